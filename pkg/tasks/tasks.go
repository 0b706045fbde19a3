// Package tasks runs fire-and-forget background work with an explicit
// status handle. Completion is observed via the handle or the caller's own
// status endpoint; no cancellation is wired through to a running task.
package tasks

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task is a handle on one background run.
type Task struct {
	id   string
	done chan struct{}
	err  error
}

// ID returns the task identifier.
func (t *Task) ID() string { return t.id }

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task's error. Valid only after Done is closed.
func (t *Task) Err() error { return t.err }

// Runner launches background tasks and tracks the handles of in-flight
// ones.
type Runner struct {
	mu       sync.Mutex
	inFlight map[string]*Task
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// NewRunner creates a task runner.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{inFlight: make(map[string]*Task), logger: logger}
}

// Go starts fn in the background under a fresh context and returns its
// handle. A second Go with the same id while the first is in flight
// returns the existing handle without starting a duplicate.
func (r *Runner) Go(id string, fn func(ctx context.Context) error) *Task {
	r.mu.Lock()
	if existing, ok := r.inFlight[id]; ok {
		r.mu.Unlock()
		return existing
	}
	t := &Task{id: id, done: make(chan struct{})}
	r.inFlight[id] = t
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t.err = fn(context.Background())
		if t.err != nil {
			r.logger.Error("background task failed", zap.String("task_id", id), zap.Error(t.err))
		}
		r.mu.Lock()
		delete(r.inFlight, id)
		r.mu.Unlock()
		close(t.done)
	}()
	return t
}

// InFlight reports whether a task with id is currently running.
func (r *Runner) InFlight(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[id]
	return ok
}

// Wait blocks until all launched tasks finish. Used on shutdown.
func (r *Runner) Wait() { r.wg.Wait() }
