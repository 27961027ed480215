package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcomeLog struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (l *outcomeLog) observe(_ string, _ Job, outcome Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, outcome)
}

func (l *outcomeLog) snapshot() []Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Outcome(nil), l.outcomes...)
}

func TestQueueRejectsBeforeStartAndAfterStop(t *testing.T) {
	q := NewQueue("snapshots", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "1"})
	require.ErrorIs(t, err, ErrQueueClosed)

	q.Start(context.Background())
	q.Stop()
	err = q.Enqueue(Job{ID: "2"})
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 2)
	log := &outcomeLog{}
	q := NewQueue("snapshots", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Workers: 2, Observer: log.observe})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a", Type: "snapshot.invalidate"}))
	require.NoError(t, q.Enqueue(Job{ID: "b", Type: "snapshot.invalidate"}))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case job := <-done:
			seen[job.ID] = true
			assert.False(t, job.Enqueued.IsZero())
		case <-time.After(time.Second):
			t.Fatal("job not processed")
		}
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)
	assert.Eventually(t, func() bool { return len(log.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestQueueRetriesThenDrops(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	log := &outcomeLog{}
	q := NewQueue("snapshots", func(context.Context, Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("redis down")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond, Observer: log.observe})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a"}))

	assert.Eventually(t, func() bool { return len(log.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []Outcome{OutcomeRetry, OutcomeRetry, OutcomeDropped}, log.snapshot())
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}
