package async

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TaskFunc is the unit of deferred work: a no-argument fallible closure.
// The context is supplied by whoever runs the task and carries cancellation
// for the closure's own use; the task itself never cancels it.
type TaskFunc func(ctx context.Context) error

// Task wraps a TaskFunc with observable, thread-safe completion state.
// A task runs at most once; its outcome is stored, never thrown, and can be
// read back through IsComplete and Result from any goroutine. A caller that
// never asks for the result simply never learns it (fire-and-forget is
// supported on purpose).
type Task struct {
	id   uuid.UUID
	name string
	fn   TaskFunc

	mu      sync.Mutex
	started bool
	done    bool
	err     error
}

// NewTask creates a non-running task. No side effects until Run.
func NewTask(name string, fn TaskFunc) *Task {
	return &Task{
		id:   uuid.New(),
		name: name,
		fn:   fn,
	}
}

// ID returns the task's unique id.
func (t *Task) ID() uuid.UUID { return t.id }

// Name returns the human-readable task name, for logging.
func (t *Task) Name() string { return t.name }

// Run invokes the closure exactly once and records its outcome. The closure's
// error is captured, not propagated. Run may be called from any goroutine;
// calling it again after the first invocation is a caller error and is
// refused so the set-once completion invariant holds.
func (t *Task) Run(ctx context.Context) {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	err := t.fn(ctx)

	t.mu.Lock()
	t.done = true
	t.err = err
	t.mu.Unlock()
}

// IsComplete reports whether the closure has finished.
func (t *Task) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Result returns the closure's outcome. ok is false until the task has
// completed; afterwards err is exactly what the closure returned.
func (t *Task) Result() (err error, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err, t.done
}
