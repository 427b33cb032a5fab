package async

import (
	"context"
	"sync"
)

// Future represents an asynchronous computation that settles exactly once,
// either with a value or with an error. Registered handlers run synchronously:
// on the settling goroutine when registered before settlement, or on the
// registering goroutine when the future is already settled. Handlers must not
// block; a slow handler stalls whoever resolves the future.
type Future interface {
	// Complete settles the future with a value. No-op if already settled.
	Complete(result any)

	// Fail settles the future with an error. No-op if already settled.
	Fail(err error)

	// Result returns a channel that carries the settled result.
	Result() <-chan FutureResult

	// OnSuccess registers a success handler. Fires immediately if the
	// future already completed.
	OnSuccess(handler func(any)) Future

	// OnFailure registers a failure handler. Fires immediately if the
	// future already failed.
	OnFailure(handler func(error)) Future

	// Map transforms the eventual value into a new Future.
	Map(fn func(any) any) Future

	// Then chains a success handler that may itself fail, returning a new
	// Future with the handler's outcome.
	Then(fn func(any) (any, error)) Future

	// Catch chains an error handler that can recover from failure,
	// returning a new Future with the handler's outcome.
	Catch(fn func(error) (any, error)) Future

	// Await blocks until the future settles or ctx is done.
	Await(ctx context.Context) (any, error)
}

// Promise is a writable Future. TryComplete and TryFail report whether the
// call was the one that settled it.
type Promise interface {
	Future

	TryComplete(result any) bool
	TryFail(err error) bool
}

// FutureResult carries a settled value or error.
type FutureResult struct {
	Value any
	Error error
}

// Error is a plain error used by the combinators in this package.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type future struct {
	resultChan chan FutureResult
	once       sync.Once

	mu              sync.Mutex
	completed       bool
	result          FutureResult
	successHandlers []func(any)
	failureHandlers []func(error)
}

// NewFuture creates a pending future with no handlers registered.
func NewFuture() Future {
	return &future{
		resultChan: make(chan FutureResult, 1),
	}
}

// NewPromise creates a pending promise.
func NewPromise() Promise {
	return &promise{future: &future{
		resultChan: make(chan FutureResult, 1),
	}}
}

// settle performs the single state transition. The handler snapshot is taken
// under the lock so a concurrent OnSuccess/OnFailure either lands in the
// snapshot or observes completed and fires itself; a handler is never invoked
// twice and never dropped.
func (f *future) settle(r FutureResult) bool {
	won := false
	f.once.Do(func() {
		won = true

		f.mu.Lock()
		f.completed = true
		f.result = r
		success := f.successHandlers
		failure := f.failureHandlers
		f.successHandlers = nil
		f.failureHandlers = nil
		f.mu.Unlock()

		f.resultChan <- r

		if r.Error != nil {
			for _, h := range failure {
				h(r.Error)
			}
		} else {
			for _, h := range success {
				h(r.Value)
			}
		}
	})
	return won
}

func (f *future) Complete(result any) {
	f.settle(FutureResult{Value: result})
}

func (f *future) Fail(err error) {
	f.settle(FutureResult{Error: err})
}

func (f *future) Result() <-chan FutureResult {
	return f.resultChan
}

func (f *future) OnSuccess(handler func(any)) Future {
	f.mu.Lock()
	if f.completed {
		r := f.result
		f.mu.Unlock()
		if r.Error == nil {
			handler(r.Value)
		}
		return f
	}
	f.successHandlers = append(f.successHandlers, handler)
	f.mu.Unlock()
	return f
}

func (f *future) OnFailure(handler func(error)) Future {
	f.mu.Lock()
	if f.completed {
		r := f.result
		f.mu.Unlock()
		if r.Error != nil {
			handler(r.Error)
		}
		return f
	}
	f.failureHandlers = append(f.failureHandlers, handler)
	f.mu.Unlock()
	return f
}

func (f *future) Map(fn func(any) any) Future {
	mapped := NewFuture()

	f.OnSuccess(func(result any) {
		mapped.Complete(fn(result))
	})
	f.OnFailure(func(err error) {
		mapped.Fail(err)
	})

	return mapped
}

func (f *future) Then(fn func(any) (any, error)) Future {
	mapped := NewFuture()

	f.OnSuccess(func(result any) {
		newResult, err := fn(result)
		if err != nil {
			mapped.Fail(err)
		} else {
			mapped.Complete(newResult)
		}
	})
	f.OnFailure(func(err error) {
		mapped.Fail(err)
	})

	return mapped
}

func (f *future) Catch(fn func(error) (any, error)) Future {
	mapped := NewFuture()

	f.OnSuccess(func(result any) {
		mapped.Complete(result)
	})
	f.OnFailure(func(err error) {
		newResult, handlerErr := fn(err)
		if handlerErr != nil {
			mapped.Fail(handlerErr)
		} else {
			mapped.Complete(newResult)
		}
	})

	return mapped
}

// Await blocks until the future settles or ctx is done.
// Provides async/await-style syntax: result, err := future.Await(ctx)
func (f *future) Await(ctx context.Context) (any, error) {
	f.mu.Lock()
	if f.completed {
		r := f.result
		f.mu.Unlock()
		return r.Value, r.Error
	}
	f.mu.Unlock()

	select {
	case r := <-f.resultChan:
		// Put it back so later Await calls and Result readers see it too.
		f.resultChan <- r
		return r.Value, r.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type promise struct {
	*future
}

func (p *promise) TryComplete(result any) bool {
	return p.settle(FutureResult{Value: result})
}

func (p *promise) TryFail(err error) bool {
	return p.settle(FutureResult{Error: err})
}
