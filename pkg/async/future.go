package async

import (
	"context"
)

// FutureT is a type-safe Future using generics. It is a struct rather than an
// interface because Go does not allow type parameters on interface methods.
type FutureT[T any] struct {
	future Future
}

// PromiseT is a type-safe, writable FutureT.
type PromiseT[T any] struct {
	FutureT[T]
}

// NewFutureT creates a pending type-safe future.
func NewFutureT[T any]() *FutureT[T] {
	return &FutureT[T]{future: NewFuture()}
}

// NewPromiseT creates a pending type-safe promise.
func NewPromiseT[T any]() *PromiseT[T] {
	return &PromiseT[T]{
		FutureT: FutureT[T]{future: NewPromise()},
	}
}

// Await blocks until the future settles or ctx is done and returns the typed
// result.
func (f *FutureT[T]) Await(ctx context.Context) (T, error) {
	var zero T
	result, err := f.future.Await(ctx)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, &Error{Message: "type assertion failed"}
	}
	return typed, nil
}

// OnSuccess registers a typed success handler.
func (f *FutureT[T]) OnSuccess(handler func(T)) *FutureT[T] {
	f.future.OnSuccess(func(result any) {
		if typed, ok := result.(T); ok {
			handler(typed)
		}
	})
	return f
}

// OnFailure registers an error handler.
func (f *FutureT[T]) OnFailure(handler func(error)) *FutureT[T] {
	f.future.OnFailure(handler)
	return f
}

// Complete settles the promise with a typed value. No-op if already settled.
func (p *PromiseT[T]) Complete(value T) {
	p.future.Complete(value)
}

// Fail settles the promise with an error. No-op if already settled.
func (p *PromiseT[T]) Fail(err error) {
	p.future.Fail(err)
}

// unwrap extracts the untyped Future from a *FutureT[T] or *PromiseT[T].
func unwrap[T any](f interface {
	Await(context.Context) (T, error)
}) (Future, bool) {
	switch v := f.(type) {
	case *FutureT[T]:
		return v.future, true
	case *PromiseT[T]:
		return v.future, true
	default:
		return nil, false
	}
}

// Then chains a typed success handler, returning a new future with the
// transformed type. Accepts both FutureT and PromiseT.
func Then[T any, R any](f interface {
	Await(context.Context) (T, error)
}, fn func(T) (R, error)) *FutureT[R] {
	mapped := NewFutureT[R]()

	underlying, ok := unwrap[T](f)
	if !ok {
		mapped.future.Fail(&Error{Message: "invalid future type"})
		return mapped
	}

	underlying.OnSuccess(func(result any) {
		typed, ok := result.(T)
		if !ok {
			mapped.future.Fail(&Error{Message: "type assertion failed"})
			return
		}
		newResult, err := fn(typed)
		if err != nil {
			mapped.future.Fail(err)
		} else {
			mapped.future.Complete(newResult)
		}
	})
	underlying.OnFailure(func(err error) {
		mapped.future.Fail(err)
	})

	return mapped
}

// Catch chains a typed error handler that can recover from failure.
func Catch[T any](f interface {
	Await(context.Context) (T, error)
}, fn func(error) (T, error)) *FutureT[T] {
	mapped := NewFutureT[T]()

	underlying, ok := unwrap[T](f)
	if !ok {
		mapped.future.Fail(&Error{Message: "invalid future type"})
		return mapped
	}

	underlying.OnSuccess(func(result any) {
		typed, ok := result.(T)
		if !ok {
			mapped.future.Fail(&Error{Message: "type assertion failed"})
			return
		}
		mapped.future.Complete(typed)
	})
	underlying.OnFailure(func(err error) {
		newResult, handlerErr := fn(err)
		if handlerErr != nil {
			mapped.future.Fail(handlerErr)
		} else {
			mapped.future.Complete(newResult)
		}
	})

	return mapped
}

// MapT transforms the eventual value synchronously.
func MapT[T any, R any](f interface {
	Await(context.Context) (T, error)
}, fn func(T) R) *FutureT[R] {
	return Then(f, func(v T) (R, error) {
		return fn(v), nil
	})
}

// All waits for every future to complete and collects the results in argument
// order. Fails with the first error encountered.
func All[T any](ctx context.Context, futures ...interface {
	Await(context.Context) (T, error)
}) *FutureT[[]T] {
	promise := NewPromiseT[[]T]()

	go func() {
		results := make([]T, 0, len(futures))
		for _, f := range futures {
			result, err := f.Await(ctx)
			if err != nil {
				promise.Fail(err)
				return
			}
			results = append(results, result)
		}
		promise.Complete(results)
	}()

	return &promise.FutureT
}

// Race settles with the outcome of whichever future settles first.
func Race[T any](ctx context.Context, futures ...interface {
	Await(context.Context) (T, error)
}) *FutureT[T] {
	promise := NewPromiseT[T]()

	// Cancellation propagates through each Await, so the first settled
	// outcome wins and the rest become no-ops.
	for _, f := range futures {
		go func(f interface {
			Await(context.Context) (T, error)
		}) {
			result, err := f.Await(ctx)
			if err != nil {
				promise.Fail(err)
			} else {
				promise.Complete(result)
			}
		}(f)
	}

	return &promise.FutureT
}
