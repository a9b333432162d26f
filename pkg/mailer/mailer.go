// Package mailer implements the outbound notification pipeline:
// template rendering, SMTP delivery behind a circuit breaker, and a
// sharded fire-and-forget dispatcher. Callers enqueue a job and move
// on; delivery failures are logged and recorded, never returned.
package mailer

import "context"

// Job is a single notification to deliver.
type Job struct {
	To       string
	Template string
	Data     map[string]any
}

// Notifier is the interface the services depend on.
type Notifier interface {
	Enqueue(job Job)
}

// Sender delivers a rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// DispatchRecord describes one delivery attempt for durable logging.
type DispatchRecord struct {
	Recipient string
	Template  string
	Subject   string
	Payload   []byte
	Success   bool
	ErrorText string
}

// Recorder persists dispatch outcomes. Implementations must not fail
// the pipeline; errors are theirs to log.
type Recorder interface {
	Record(ctx context.Context, rec DispatchRecord)
}

// NopNotifier discards every job; used when mail is disabled and in tests.
type NopNotifier struct{}

func (NopNotifier) Enqueue(Job) {}
