package shellkit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shellkitio/shellkit/pkg/config"
)

func TestNew_WiresLoopAndRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false

	app := New(cfg, nil)

	if err := app.Registry().Register("ping", func(ctx context.Context, body json.RawMessage) (any, error) {
		return "pong", nil
	}); err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}

	// The loop is constructed stopped; Run is what starts it.
	if app.Loop().IsRunning() {
		t.Error("IsRunning() = true before Run, want false")
	}

	done := make(chan error, 1)
	go func() { done <- app.Loop().Run(context.Background()) }()
	defer func() {
		app.Loop().Stop()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("event loop did not stop")
		}
	}()

	deadline := time.Now().Add(time.Second)
	for !app.Loop().IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("event loop never started")
		}
		time.Sleep(time.Millisecond)
	}
}
