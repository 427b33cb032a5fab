package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// LoopConfig configures an EventLoop.
type LoopConfig struct {
	Workers       int           // Number of worker goroutines
	QueueSize     int           // Dispatch queue capacity (bounded for backpressure)
	RetryInterval time.Duration // How often deferred dispatches are retried
}

// DefaultLoopConfig returns the default event loop configuration.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Workers:       10,
		QueueSize:     256,
		RetryInterval: 10 * time.Millisecond,
	}
}

// LoopStats is a snapshot of event loop counters.
type LoopStats struct {
	Submitted int64 // Tasks accepted by Submit
	Completed int64 // Tasks whose closure has finished
	Retried   int64 // Dispatch attempts deferred by a full queue
	Pending   int   // Tracked tasks not yet reaped
	Workers   int
	QueueSize int
}

// EventLoop runs submitted Tasks on a bounded pool of workers and reaps them
// once complete. A task is tracked from Submit until a worker has finished it
// and the reaper has observed the completion; reaping needs nothing from the
// submitter beyond the Submit call itself.
//
// Stop halts scheduling of tasks that have not been handed to a worker yet;
// closures already dispatched run to completion. There is no cancellation of
// in-flight work beyond whatever the closure itself does with the context
// passed to Run.
type EventLoop struct {
	cfg LoopConfig

	mu      sync.Mutex
	tracked map[*Task]struct{}
	pending []*Task // submitted, not yet handed to the dispatch queue

	dispatch    chan *Task
	completions *Channel[*Task]
	kick        chan struct{}
	quit        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup

	running   atomic.Bool
	submitted atomic.Int64
	completed atomic.Int64
	retried   atomic.Int64

	logger simpleLogger
}

// NewEventLoop creates a stopped event loop. Call Run to start scheduling.
func NewEventLoop(cfg LoopConfig) *EventLoop {
	def := DefaultLoopConfig()
	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}

	return &EventLoop{
		cfg:         cfg,
		tracked:     make(map[*Task]struct{}),
		dispatch:    make(chan *Task, cfg.QueueSize),
		completions: NewChannel[*Task](),
		kick:        make(chan struct{}, 1),
		quit:        make(chan struct{}),
		logger:      newDefaultSimpleLogger(),
	}
}

// Submit tracks the task and queues it for dispatch. The task is not
// guaranteed to start immediately. Returns ErrLoopStopped after Stop.
func (l *EventLoop) Submit(t *Task) error {
	if t == nil {
		return fmt.Errorf("task cannot be nil")
	}

	select {
	case <-l.quit:
		return ErrLoopStopped
	default:
	}

	l.mu.Lock()
	l.tracked[t] = struct{}{}
	l.pending = append(l.pending, t)
	l.mu.Unlock()
	l.submitted.Inc()

	select {
	case l.kick <- struct{}{}:
	default:
	}
	return nil
}

// Run starts the workers and the reaper and then dispatches submitted tasks
// until Stop is called or ctx is done. Blocks for the loop's lifetime.
// Completed tasks are reaped on an explicit completion signal; a dispatch
// rejected by a full queue is kept and retried, never dropped and never
// surfaced to the submitter.
func (l *EventLoop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	select {
	case <-l.quit:
		return ErrLoopStopped
	default:
	}

	l.wg.Add(l.cfg.Workers)
	for i := 0; i < l.cfg.Workers; i++ {
		go l.worker(ctx)
	}

	reaperDone := make(chan struct{})
	go l.reap(reaperDone)

	ticker := time.NewTicker(l.cfg.RetryInterval)
	defer ticker.Stop()

	ctxDone := ctx.Done()
	for {
		select {
		case <-ctxDone:
			ctxDone = nil
			l.Stop()
		case <-l.quit:
			l.shutdown(reaperDone)
			return nil
		case <-l.kick:
			l.dispatchPending()
		case <-ticker.C:
			l.dispatchPending()
		}
	}
}

// Stop ends the scheduling loop. In-flight closures are not cancelled.
// Idempotent and safe from any goroutine.
func (l *EventLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
}

// IsRunning reports whether Run is currently active.
func (l *EventLoop) IsRunning() bool {
	return l.running.Load()
}

// Pending returns the number of tracked tasks that have not been reaped.
func (l *EventLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tracked)
}

// Stats returns a snapshot of the loop's counters.
func (l *EventLoop) Stats() LoopStats {
	return LoopStats{
		Submitted: l.submitted.Load(),
		Completed: l.completed.Load(),
		Retried:   l.retried.Load(),
		Pending:   l.Pending(),
		Workers:   l.cfg.Workers,
		QueueSize: l.cfg.QueueSize,
	}
}

// dispatchPending moves submitted tasks onto the dispatch queue. On a full
// queue the remainder is kept in submission order and retried on the next
// kick or tick.
func (l *EventLoop) dispatchPending() {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	for i, t := range pending {
		select {
		case l.dispatch <- t:
		default:
			l.retried.Inc()
			l.mu.Lock()
			l.pending = append(pending[i:], l.pending...)
			l.mu.Unlock()
			return
		}
	}
}

// worker executes dispatched tasks until the dispatch queue is closed and
// drained. Shutdown closes the queue, so nothing already dispatched is lost.
func (l *EventLoop) worker(ctx context.Context) {
	defer l.wg.Done()

	for t := range l.dispatch {
		t.Run(ctx)
		if err, ok := t.Result(); ok && err != nil {
			l.logger.Errorf("task %s failed: %v", t.Name(), err)
		}
		l.completed.Inc()
		// Completions is closed only after every worker has exited.
		_ = l.completions.Send(t)
	}
}

// reap removes tasks from the tracked set as completion signals arrive. Exits
// once the completion channel is closed and its backlog drained.
func (l *EventLoop) reap(done chan struct{}) {
	defer close(done)

	for {
		t, err := l.completions.Receive(context.Background())
		if err != nil {
			return
		}
		l.mu.Lock()
		delete(l.tracked, t)
		l.mu.Unlock()
	}
}

// shutdown lets workers drain the dispatch queue, then drains the reaper.
// Tasks still pending dispatch stay tracked and never start.
func (l *EventLoop) shutdown(reaperDone chan struct{}) {
	close(l.dispatch)
	l.wg.Wait()
	l.completions.Close()
	<-reaperDone
}
