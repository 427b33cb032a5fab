package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shellkitio/shellkit/pkg/async"
)

func startLoop(t *testing.T) *async.EventLoop {
	t.Helper()

	loop := async.NewEventLoop(async.DefaultLoopConfig())
	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	t.Cleanup(func() {
		loop.Stop()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("event loop did not stop")
		}
	})
	return loop
}

func TestDispatcher_CallSucceeds(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register("echo", func(ctx context.Context, body json.RawMessage) (any, error) {
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		return payload["msg"], nil
	}); err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}

	d := NewDispatcher(registry, startLoop(t))

	result, err := d.Dispatch(context.Background(), "echo", json.RawMessage(`{"msg":"hello"}`)).
		Await(context.Background())
	if err != nil {
		t.Fatalf("Dispatch() error = %v, want nil", err)
	}
	if result != "hello" {
		t.Errorf("Dispatch() = %v, want hello", result)
	}
}

func TestDispatcher_UnknownAction(t *testing.T) {
	d := NewDispatcher(NewRegistry(), startLoop(t))

	_, err := d.Dispatch(context.Background(), "missing", nil).Await(context.Background())
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Dispatch() error = %v, want ErrUnknownAction", err)
	}
}

func TestDispatcher_HandlerErrorCarriedVerbatim(t *testing.T) {
	want := errors.New("handler exploded")

	registry := NewRegistry()
	registry.Register("boom", func(ctx context.Context, body json.RawMessage) (any, error) {
		return nil, want
	})

	d := NewDispatcher(registry, startLoop(t))

	_, err := d.Dispatch(context.Background(), "boom", nil).Await(context.Background())
	if !errors.Is(err, want) {
		t.Errorf("Dispatch() error = %v, want %v", err, want)
	}
}

func TestDispatcher_StoppedLoop(t *testing.T) {
	loop := async.NewEventLoop(async.DefaultLoopConfig())
	loop.Stop()

	registry := NewRegistry()
	registry.Register("noop", func(ctx context.Context, body json.RawMessage) (any, error) {
		return nil, nil
	})

	d := NewDispatcher(registry, loop)

	_, err := d.Dispatch(context.Background(), "noop", nil).Await(context.Background())
	if !errors.Is(err, async.ErrLoopStopped) {
		t.Errorf("Dispatch() error = %v, want ErrLoopStopped", err)
	}
}

func TestRegistry_DuplicateRefused(t *testing.T) {
	registry := NewRegistry()
	noop := func(ctx context.Context, body json.RawMessage) (any, error) { return nil, nil }

	if err := registry.Register("dup", noop); err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}
	if err := registry.Register("dup", noop); err == nil {
		t.Error("Register() duplicate error = nil, want error")
	}
}
