package taskqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskStatus tracks a task through its lifecycle. Cancellation is cooperative;
// a running handler sees it through its context.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// ErrQueueFull is returned by Enqueue when the task buffer has no room.
var ErrQueueFull = errors.New("task queue is full")

// ErrQueueClosed is returned by Enqueue after Stop.
var ErrQueueClosed = errors.New("task queue is closed")

// Handler runs one task. The context is cancelled when the task is cancelled
// or the queue shuts down.
type Handler func(ctx context.Context) (interface{}, error)

// Task is a point-in-time snapshot of a queued unit of work.
type Task struct {
	ID     uuid.UUID   `json:"id"`
	Kind   string      `json:"kind"`
	Status TaskStatus  `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`

	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type job struct {
	id      uuid.UUID
	kind    string
	handler Handler
}

// Stats summarizes queue activity.
type Stats struct {
	Workers   int   `json:"workers"`
	Queued    int   `json:"queued"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Queue is a fixed-size worker pool with per-task status tracking and
// cooperative cancellation.
type Queue struct {
	workers int
	jobs    chan job
	logger  *zap.Logger

	mu      sync.RWMutex
	records map[uuid.UUID]*Task
	cancels map[uuid.UUID]context.CancelFunc
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	completed int64
	failed    int64
}

// New creates a stopped queue. The logger may be nil.
func New(workers int, logger *zap.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		workers: workers,
		jobs:    make(chan job, workers*4),
		logger:  logger,
		records: make(map[uuid.UUID]*Task),
		cancels: make(map[uuid.UUID]context.CancelFunc),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("task queue started", zap.Int("workers", q.workers))
}

// Stop drains in-flight tasks and shuts the pool down. Pending tasks that
// never started are marked cancelled.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()

	q.mu.Lock()
	for id, rec := range q.records {
		if rec.Status == TaskPending {
			q.finishLocked(id, TaskCancelled, nil, context.Canceled)
		}
	}
	q.mu.Unlock()

	q.logger.Info("task queue stopped",
		zap.Int64("completed", atomic.LoadInt64(&q.completed)),
		zap.Int64("failed", atomic.LoadInt64(&q.failed)))
}

// Enqueue registers the task and hands it to the pool, returning its ID for
// later status polls.
func (q *Queue) Enqueue(kind string, handler Handler) (uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return uuid.Nil, ErrQueueClosed
	}

	id := uuid.New()
	select {
	case q.jobs <- job{id: id, kind: kind, handler: handler}:
	default:
		return uuid.Nil, ErrQueueFull
	}

	q.records[id] = &Task{
		ID:         id,
		Kind:       kind,
		Status:     TaskPending,
		EnqueuedAt: time.Now().UTC(),
	}
	return id, nil
}

// Status returns a copy of the task record.
func (q *Queue) Status(id uuid.UUID) (Task, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	rec, ok := q.records[id]
	if !ok {
		return Task{}, false
	}
	return *rec, true
}

// Cancel aborts a pending or running task. Finished tasks report false.
func (q *Queue) Cancel(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, ok := q.records[id]
	if !ok {
		return false
	}

	switch rec.Status {
	case TaskPending:
		q.finishLocked(id, TaskCancelled, nil, context.Canceled)
		return true
	case TaskRunning:
		if cancel, ok := q.cancels[id]; ok {
			cancel()
			return true
		}
		return false
	default:
		return false
	}
}

// Stats reports current counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Workers:   q.workers,
		Queued:    len(q.jobs),
		Completed: atomic.LoadInt64(&q.completed),
		Failed:    atomic.LoadInt64(&q.failed),
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	logger := q.logger.With(zap.Int("worker_id", id))
	logger.Debug("worker started")

	for j := range q.jobs {
		if !q.begin(j.id) {
			continue // cancelled before it started
		}

		taskCtx, taskCancel := context.WithCancel(q.ctx)
		q.mu.Lock()
		q.cancels[j.id] = taskCancel
		q.mu.Unlock()

		start := time.Now()
		result, err := j.handler(taskCtx)
		taskCancel()

		q.mu.Lock()
		delete(q.cancels, j.id)
		switch {
		case err == nil:
			q.finishLocked(j.id, TaskCompleted, result, nil)
		case errors.Is(err, context.Canceled):
			q.finishLocked(j.id, TaskCancelled, nil, err)
		default:
			q.finishLocked(j.id, TaskFailed, nil, err)
		}
		q.mu.Unlock()

		logger.Debug("task finished",
			zap.String("task_id", j.id.String()),
			zap.String("kind", j.kind),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}

	logger.Debug("worker stopping")
}

// begin flips a pending task to running; returns false if it was already
// cancelled.
func (q *Queue) begin(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, ok := q.records[id]
	if !ok || rec.Status != TaskPending {
		return false
	}
	now := time.Now().UTC()
	rec.Status = TaskRunning
	rec.StartedAt = &now
	return true
}

func (q *Queue) finishLocked(id uuid.UUID, status TaskStatus, result interface{}, err error) {
	rec, ok := q.records[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	rec.Status = status
	rec.Result = result
	rec.FinishedAt = &now
	if err != nil {
		rec.Error = err.Error()
	}

	switch status {
	case TaskCompleted:
		atomic.AddInt64(&q.completed, 1)
	case TaskFailed:
		atomic.AddInt64(&q.failed, 1)
	}
}
