package async

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestTask_RunOnce(t *testing.T) {
	calls := 0
	task := NewTask("count", func(ctx context.Context) error {
		calls++
		return nil
	})

	if task.IsComplete() {
		t.Error("IsComplete() = true before Run, want false")
	}
	if _, ok := task.Result(); ok {
		t.Error("Result() ok = true before Run, want false")
	}

	task.Run(context.Background())

	if !task.IsComplete() {
		t.Error("IsComplete() = false after Run, want true")
	}
	err, ok := task.Result()
	if !ok {
		t.Fatal("Result() ok = false after Run, want true")
	}
	if err != nil {
		t.Errorf("Result() err = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("closure calls = %d, want 1", calls)
	}
}

func TestTask_SecondRunRefused(t *testing.T) {
	calls := 0
	task := NewTask("count", func(ctx context.Context) error {
		calls++
		return nil
	})

	task.Run(context.Background())
	task.Run(context.Background())

	if calls != 1 {
		t.Errorf("closure calls = %d, want 1", calls)
	}
}

func TestTask_CapturesClosureError(t *testing.T) {
	want := errors.New("closure failed")
	task := NewTask("failing", func(ctx context.Context) error {
		return want
	})

	task.Run(context.Background())

	err, ok := task.Result()
	if !ok {
		t.Fatal("Result() ok = false, want true")
	}
	if !errors.Is(err, want) {
		t.Errorf("Result() err = %v, want %v", err, want)
	}
}

func TestTask_ConcurrentObservers(t *testing.T) {
	task := NewTask("observed", func(ctx context.Context) error {
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				task.IsComplete()
				task.Result()
			}
		}()
	}
	task.Run(context.Background())
	wg.Wait()

	if !task.IsComplete() {
		t.Error("IsComplete() = false, want true")
	}
}
