package async

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPromiseT_Await(t *testing.T) {
	promise := NewPromiseT[string]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		promise.Complete("test-result")
	}()

	result, err := promise.Await(context.Background())
	if err != nil {
		t.Fatalf("Await() error = %v, want nil", err)
	}
	if result != "test-result" {
		t.Errorf("Await() = %v, want test-result", result)
	}
}

func TestPromiseT_AwaitError(t *testing.T) {
	promise := NewPromiseT[string]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		promise.Fail(errors.New("test error"))
	}()

	result, err := promise.Await(context.Background())
	if err == nil {
		t.Error("Await() error = nil, want error")
	}
	if result != "" {
		t.Errorf("Await() = %v, want empty string", result)
	}
}

func TestThen(t *testing.T) {
	promise := NewPromiseT[int]()

	transformed := Then(promise, func(n int) (string, error) {
		return fmt.Sprintf("value: %d", n), nil
	})

	promise.Complete(10)

	result, err := transformed.Await(context.Background())
	if err != nil {
		t.Fatalf("Then() error = %v, want nil", err)
	}
	if result != "value: 10" {
		t.Errorf("Then() = %v, want value: 10", result)
	}
}

func TestCatch(t *testing.T) {
	promise := NewPromiseT[string]()

	recovered := Catch(promise, func(err error) (string, error) {
		return "recovered: " + err.Error(), nil
	})

	promise.Fail(errors.New("original error"))

	result, err := recovered.Await(context.Background())
	if err != nil {
		t.Fatalf("Catch() error = %v, want nil", err)
	}
	if result != "recovered: original error" {
		t.Errorf("Catch() = %v, want recovered: original error", result)
	}
}

func TestMapT(t *testing.T) {
	promise := NewPromiseT[int]()

	mapped := MapT(promise, func(n int) int {
		return n * 2
	})

	promise.Complete(5)

	result, err := mapped.Await(context.Background())
	if err != nil {
		t.Fatalf("MapT() error = %v, want nil", err)
	}
	if result != 10 {
		t.Errorf("MapT() = %v, want 10", result)
	}
}

func TestAll(t *testing.T) {
	p1 := NewPromiseT[int]()
	p2 := NewPromiseT[int]()
	p3 := NewPromiseT[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		p1.Complete(1)
	}()
	go func() {
		time.Sleep(20 * time.Millisecond)
		p2.Complete(2)
	}()
	go func() {
		time.Sleep(30 * time.Millisecond)
		p3.Complete(3)
	}()

	all := All(context.Background(), p1, p2, p3)

	results, err := all.Await(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v, want nil", err)
	}
	if len(results) != 3 {
		t.Fatalf("All() len = %v, want 3", len(results))
	}
	if results[0] != 1 || results[1] != 2 || results[2] != 3 {
		t.Errorf("All() = %v, want [1 2 3]", results)
	}
}

func TestRace(t *testing.T) {
	p1 := NewPromiseT[string]()
	p2 := NewPromiseT[string]()

	go func() {
		time.Sleep(100 * time.Millisecond)
		p1.Complete("slow")
	}()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p2.Complete("fast")
	}()

	race := Race(context.Background(), p1, p2)

	result, err := race.Await(context.Background())
	if err != nil {
		t.Fatalf("Race() error = %v, want nil", err)
	}
	if result != "fast" {
		t.Errorf("Race() = %v, want fast", result)
	}
}
