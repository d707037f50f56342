package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type fakeConsumer struct {
	mu        sync.Mutex
	pending   []*messaging.Job
	inflight  []*messaging.Job
	acked     []string
	dead      map[string]string
	recovered int
}

func newFakeConsumer(jobs ...*messaging.Job) *fakeConsumer {
	return &fakeConsumer{pending: jobs, dead: make(map[string]string)}
}

func (f *fakeConsumer) Dequeue(ctx context.Context, timeout time.Duration) (*messaging.Job, error) {
	f.mu.Lock()
	if len(f.pending) > 0 {
		job := f.pending[0]
		f.pending = f.pending[1:]
		f.inflight = append(f.inflight, job)
		f.mu.Unlock()
		return job, nil
	}
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, nil
	}
}

func (f *fakeConsumer) Ack(ctx context.Context, job *messaging.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, job.ID)
	f.removeInflight(job.ID)
	return nil
}

func (f *fakeConsumer) DeadLetter(ctx context.Context, job *messaging.Job, reason error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead[job.ID] = reason.Error()
	f.removeInflight(job.ID)
	return nil
}

func (f *fakeConsumer) removeInflight(id string) {
	for i, j := range f.inflight {
		if j.ID == id {
			f.inflight = append(f.inflight[:i], f.inflight[i+1:]...)
			return
		}
	}
}

func (f *fakeConsumer) Recover(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.inflight)
	f.pending = append(f.inflight, f.pending...)
	f.inflight = nil
	f.recovered += n
	return n, nil
}

func (f *fakeConsumer) Len(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.pending)), nil
}

func (f *fakeConsumer) ackedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.acked...)
}

func testConfig() JobProcessorConfig {
	return JobProcessorConfig{
		BlockTimeout:    10 * time.Millisecond,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func newJob(t *testing.T, key string) *messaging.Job {
	t.Helper()
	job, err := messaging.NewJob(key, map[string]string{"k": "v"}, time.Now())
	require.NoError(t, err)
	return job
}

func TestJobProcessor_AcksSuccessfulJob(t *testing.T) {
	job := newJob(t, "mail")
	consumer := newFakeConsumer()
	m := metrics.Nop()
	p := NewJobProcessor(consumer, messaging.HandlerFunc(func(ctx context.Context, j *messaging.Job) error {
		return nil
	}), testConfig(), logger.Nop(), m)

	p.Process(context.Background(), job)

	assert.Equal(t, []string{job.ID}, consumer.ackedIDs())
	assert.Empty(t, consumer.dead)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsProcessed.WithLabelValues("mail")))
}

func TestJobProcessor_RetriesThenSucceeds(t *testing.T) {
	job := newJob(t, "mail")
	consumer := newFakeConsumer()
	m := metrics.Nop()
	attempts := 0
	p := NewJobProcessor(consumer, messaging.HandlerFunc(func(ctx context.Context, j *messaging.Job) error {
		attempts++
		if attempts < 2 {
			return errors.New("temporary")
		}
		return nil
	}), testConfig(), logger.Nop(), m)

	p.Process(context.Background(), job)

	assert.Equal(t, 2, attempts)
	assert.Equal(t, []string{job.ID}, consumer.ackedIDs())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRetries.WithLabelValues("mail")))
}

func TestJobProcessor_DeadLettersAfterRetries(t *testing.T) {
	job := newJob(t, "mail")
	consumer := newFakeConsumer()
	m := metrics.Nop()
	attempts := 0
	p := NewJobProcessor(consumer, messaging.HandlerFunc(func(ctx context.Context, j *messaging.Job) error {
		attempts++
		return errors.New("smtp down")
	}), testConfig(), logger.Nop(), m)

	p.Process(context.Background(), job)

	// First attempt plus MaxRetries.
	assert.Equal(t, 3, attempts)
	assert.Empty(t, consumer.ackedIDs())
	assert.Equal(t, "smtp down", consumer.dead[job.ID])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsDeadLettered.WithLabelValues("mail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsFailed.WithLabelValues("mail")))
}

func TestJobProcessor_UnknownKeyIsNotRetried(t *testing.T) {
	job := newJob(t, "unknown")
	consumer := newFakeConsumer()
	p := NewJobProcessor(consumer, messaging.NewMux(), testConfig(), logger.Nop(), metrics.Nop())

	p.Process(context.Background(), job)

	require.Contains(t, consumer.dead, job.ID)
	assert.Contains(t, consumer.dead[job.ID], "no handler registered")
}

func TestJobProcessor_StartRecoversAndDrains(t *testing.T) {
	orphan := newJob(t, "mail")
	fresh := newJob(t, "mail")
	consumer := newFakeConsumer(fresh)
	consumer.inflight = []*messaging.Job{orphan}

	p := NewJobProcessor(consumer, messaging.HandlerFunc(func(ctx context.Context, j *messaging.Job) error {
		return nil
	}), testConfig(), logger.Nop(), metrics.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return len(consumer.ackedIDs()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{orphan.ID, fresh.ID}, consumer.ackedIDs())
	assert.Equal(t, 1, consumer.recovered)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop")
	}
}

func TestJobProcessor_ShutdownLeavesJobInFlight(t *testing.T) {
	job := newJob(t, "mail")
	consumer := newFakeConsumer()
	ctx, cancel := context.WithCancel(context.Background())

	p := NewJobProcessor(consumer, messaging.HandlerFunc(func(ctx context.Context, j *messaging.Job) error {
		cancel()
		return errors.New("interrupted")
	}), testConfig(), logger.Nop(), metrics.Nop())

	p.Process(ctx, job)

	assert.Empty(t, consumer.ackedIDs())
	assert.Empty(t, consumer.dead)
}

func TestNewJobProcessor_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BlockTimeout = 0
	assert.Panics(t, func() {
		NewJobProcessor(newFakeConsumer(), messaging.NewMux(), cfg, logger.Nop(), metrics.Nop())
	})
}

func TestDepthReporter_Sample(t *testing.T) {
	consumer := newFakeConsumer(newJob(t, "a"), newJob(t, "b"))
	m := metrics.Nop()
	r := NewDepthReporter(consumer, m, logger.Nop(), time.Minute)

	r.sample(context.Background())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueueDepth))
}
