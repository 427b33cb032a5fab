package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shellkitio/shellkit/pkg/async"
)

// Dispatcher turns front-end action calls into Tasks on the event loop and
// hands the eventual outcome back through a typed future.
type Dispatcher struct {
	registry *Registry
	loop     *async.EventLoop
}

// NewDispatcher creates a dispatcher routing calls through the given loop.
func NewDispatcher(registry *Registry, loop *async.EventLoop) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		loop:     loop,
	}
}

// Dispatch schedules the named action on the event loop. The returned future
// settles with the handler's result or error; an unknown action or a stopped
// loop fails the future immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, body json.RawMessage) *async.FutureT[any] {
	promise := async.NewPromiseT[any]()

	h, ok := d.registry.Lookup(action)
	if !ok {
		promise.Fail(fmt.Errorf("%w: %s", ErrUnknownAction, action))
		return &promise.FutureT
	}

	task := async.NewTask("bridge:"+action, func(taskCtx context.Context) error {
		result, err := h(joinContext(ctx, taskCtx), body)
		if err != nil {
			promise.Fail(err)
			return err
		}
		promise.Complete(result)
		return nil
	})

	if err := d.loop.Submit(task); err != nil {
		promise.Fail(err)
	}
	return &promise.FutureT
}

// joinContext prefers the caller's context but falls back to the loop's when
// the caller passed nil.
func joinContext(caller, loop context.Context) context.Context {
	if caller != nil {
		return caller
	}
	return loop
}
