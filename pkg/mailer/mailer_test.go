package mailer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukshanyomal11/farm-management-system/pkg/circuit"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

func init() {
	logger.InitTestLogger()
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeSender) Send(_ context.Context, to, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, to+"|"+subject)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRecorder struct {
	mu   sync.Mutex
	recs []DispatchRecord
}

func (f *fakeRecorder) Record(_ context.Context, rec DispatchRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
}

func (f *fakeRecorder) records() []DispatchRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DispatchRecord, len(f.recs))
	copy(out, f.recs)
	return out
}

func TestTemplatesRender(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	subject, body, err := templates.Render("verification_code", map[string]any{
		"FullName":  "Nimal Perera",
		"Code":      "482913",
		"ExpiresIn": "10 minutes",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your verification code", subject)
	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "Nimal Perera")
	assert.Contains(t, body, "10 minutes")
}

func TestTemplatesRenderUnknownKind(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	_, _, err = templates.Render("no-such-template", nil)
	assert.Error(t, err)
}

func TestDispatcherDelivers(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	breaker := circuit.NewBreaker("mail-test", circuit.DefaultConfig(), nil)

	d := NewDispatcher(2, 8, sender, breaker, templates, recorder)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(Job{
		To:       "owner@greenfield.lk",
		Template: "welcome",
		Data:     map[string]any{"FullName": "Nimal Perera", "FarmName": "Greenfield"},
	})

	require.Eventually(t, func() bool {
		return sender.sentCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	d.Wait()

	recs := recorder.records()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Success)
	assert.Equal(t, "owner@greenfield.lk", recs[0].Recipient)
	assert.Equal(t, "welcome", recs[0].Template)
}

func TestDispatcherRecordsFailure(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	sender := &fakeSender{fail: true}
	recorder := &fakeRecorder{}
	breaker := circuit.NewBreaker("mail-test", circuit.DefaultConfig(), nil)

	d := NewDispatcher(1, 4, sender, breaker, templates, recorder)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(Job{
		To:       "owner@greenfield.lk",
		Template: "password_reset",
		Data:     map[string]any{"Token": "abc", "ExpiresIn": "1 hour"},
	})

	require.Eventually(t, func() bool {
		return len(recorder.records()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	d.Wait()

	recs := recorder.records()
	assert.False(t, recs[0].Success)
	assert.NotEmpty(t, recs[0].ErrorText)
}

func TestShardIndexStable(t *testing.T) {
	a := shardIndex("owner@greenfield.lk", 4)
	b := shardIndex("owner@greenfield.lk", 4)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 4)
}
