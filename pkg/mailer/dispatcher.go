package mailer

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rukshanyomal11/farm-management-system/pkg/circuit"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

const sendTimeout = 15 * time.Second

// Dispatcher fans jobs out to a fixed set of workers. Jobs for the
// same recipient always land on the same worker, so a verification
// code and the welcome mail that follows it are delivered in order.
type Dispatcher struct {
	queues    []chan Job
	sender    Sender
	breaker   *circuit.Breaker
	templates *Templates
	recorder  Recorder

	wg   sync.WaitGroup
	once sync.Once
}

// NewDispatcher builds a dispatcher with the given worker count and
// per-worker buffer size. Recorder may be nil.
func NewDispatcher(workers, buffer int, sender Sender, breaker *circuit.Breaker, templates *Templates, recorder Recorder) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 1
	}

	queues := make([]chan Job, workers)
	for i := range queues {
		queues[i] = make(chan Job, buffer)
	}

	return &Dispatcher{
		queues:    queues,
		sender:    sender,
		breaker:   breaker,
		templates: templates,
		recorder:  recorder,
	}
}

// Start launches the workers. They drain their queues until ctx is
// cancelled, then exit once the remaining buffered jobs are delivered.
func (d *Dispatcher) Start(ctx context.Context) {
	d.once.Do(func() {
		for i, queue := range d.queues {
			d.wg.Add(1)
			go d.runWorker(ctx, i, queue)
		}
	})
}

// Enqueue hands a job to its recipient's worker. It never blocks; when
// the worker's buffer is full the job is dropped with a warning, which
// the caller treats the same as a transient delivery failure.
func (d *Dispatcher) Enqueue(job Job) {
	queue := d.queues[shardIndex(job.To, len(d.queues))]
	select {
	case queue <- job:
	default:
		logger.GetLogger().Warn("mail queue full, dropping job")
	}
}

// Wait blocks until all workers have exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, queue chan Job) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			// Drain what is already buffered before exiting.
			for {
				select {
				case job := <-queue:
					d.deliver(context.Background(), job)
				default:
					return
				}
			}
		case job := <-queue:
			d.deliver(ctx, job)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, job Job) {
	log := logger.GetLogger()

	subject, body, err := d.templates.Render(job.Template, job.Data)
	if err != nil {
		log.Error("mail template render failed")
		d.record(ctx, job, subject, false, err)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err = d.breaker.Execute(func() error {
		return d.sender.Send(sendCtx, job.To, subject, body)
	})
	if err != nil {
		log.Warn("mail delivery failed")
		d.record(ctx, job, subject, false, err)
		return
	}

	d.record(ctx, job, subject, true, nil)
}

func (d *Dispatcher) record(ctx context.Context, job Job, subject string, success bool, sendErr error) {
	if d.recorder == nil {
		return
	}

	payload, _ := json.Marshal(job.Data)
	rec := DispatchRecord{
		Recipient: job.To,
		Template:  job.Template,
		Subject:   subject,
		Payload:   payload,
		Success:   success,
	}
	if sendErr != nil {
		rec.ErrorText = sendErr.Error()
	}
	d.recorder.Record(ctx, rec)
}

func shardIndex(key string, shards int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32()) % shards
}
