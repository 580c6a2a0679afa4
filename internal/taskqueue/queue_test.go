package taskqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, q *Queue, id uuid.UUID, want TaskStatus) Task {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			rec, _ := q.Status(id)
			t.Fatalf("task %s never reached %s, last status %s", id, want, rec.Status)
			return Task{}
		case <-time.After(5 * time.Millisecond):
			if rec, ok := q.Status(id); ok && rec.Status == want {
				return rec
			}
		}
	}
}

func TestEnqueueAndComplete(t *testing.T) {
	q := New(2, nil)
	q.Start()
	defer q.Stop()

	id, err := q.Enqueue("score-vendor", func(ctx context.Context) (interface{}, error) {
		return 42, nil
	})
	require.NoError(t, err)

	rec := waitForStatus(t, q, id, TaskCompleted)
	assert.Equal(t, 42, rec.Result)
	assert.NotNil(t, rec.FinishedAt)
	assert.Empty(t, rec.Error)
}

func TestFailedTask(t *testing.T) {
	q := New(1, nil)
	q.Start()
	defer q.Stop()

	id, err := q.Enqueue("score-bid", func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("oracle timeout")
	})
	require.NoError(t, err)

	rec := waitForStatus(t, q, id, TaskFailed)
	assert.Equal(t, "oracle timeout", rec.Error)
	assert.Nil(t, rec.Result)

	stats := q.Stats()
	assert.Equal(t, int64(1), stats.Failed)
}

func TestCancelRunningTask(t *testing.T) {
	q := New(1, nil)
	q.Start()
	defer q.Stop()

	started := make(chan struct{})
	id, err := q.Enqueue("slow", func(ctx context.Context) (interface{}, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)

	<-started
	require.True(t, q.Cancel(id))

	rec := waitForStatus(t, q, id, TaskCancelled)
	assert.Equal(t, context.Canceled.Error(), rec.Error)

	// a finished task cannot be cancelled again
	assert.False(t, q.Cancel(id))
}

func TestCancelPendingTask(t *testing.T) {
	q := New(1, nil)
	q.Start()
	defer q.Stop()

	blocker := make(chan struct{})
	_, err := q.Enqueue("blocker", func(ctx context.Context) (interface{}, error) {
		<-blocker
		return nil, nil
	})
	require.NoError(t, err)

	pending, err := q.Enqueue("never-runs", func(ctx context.Context) (interface{}, error) {
		t.Error("cancelled task must not run")
		return nil, nil
	})
	require.NoError(t, err)

	// wait until the blocker occupies the single worker
	require.Eventually(t, func() bool {
		rec, ok := q.Status(pending)
		return ok && rec.Status == TaskPending
	}, time.Second, 5*time.Millisecond)

	require.True(t, q.Cancel(pending))
	rec, ok := q.Status(pending)
	require.True(t, ok)
	assert.Equal(t, TaskCancelled, rec.Status)

	close(blocker)
}

func TestQueueFull(t *testing.T) {
	q := New(1, nil)
	// not started, so the buffer (cap 4) fills up

	block := func(ctx context.Context) (interface{}, error) { return nil, nil }
	for i := 0; i < 4; i++ {
		_, err := q.Enqueue("fill", block)
		require.NoError(t, err)
	}

	_, err := q.Enqueue("overflow", block)
	assert.ErrorIs(t, err, ErrQueueFull)

	q.Start()
	q.Stop()
}

func TestEnqueueAfterStop(t *testing.T) {
	q := New(1, nil)
	q.Start()
	q.Stop()

	_, err := q.Enqueue("late", func(ctx context.Context) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestUnknownTaskStatus(t *testing.T) {
	q := New(1, nil)
	_, ok := q.Status(uuid.New())
	assert.False(t, ok)
}
