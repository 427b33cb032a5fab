package async

import (
	"context"
	"sync"
)

// Channel is a thread-safe multi-producer multi-consumer FIFO queue with
// blocking receive and a close signal. By default the buffer is unbounded and
// Send never blocks; NewBoundedChannel turns on backpressure instead.
//
// Values sent before Close remain receivable: Close only stops new sends and
// makes receiving-from-empty fail, it never discards backlog.
type Channel[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond // shares mu; guards buf and closed
	buf    []T
	closed bool
	cap    int // 0 means unbounded
}

// NewChannel creates an open, empty, unbounded channel.
func NewChannel[T any]() *Channel[T] {
	c := &Channel[T]{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// NewBoundedChannel creates a channel that rejects sends with ErrChannelFull
// once capacity values are buffered. Capacity must be at least 1.
func NewBoundedChannel[T any](capacity int) *Channel[T] {
	if capacity < 1 {
		capacity = 1
	}
	c := &Channel[T]{cap: capacity}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Send appends a value and wakes one waiting receiver. Returns
// ErrChannelClosed after Close, ErrChannelFull on a bounded channel at
// capacity. Never blocks.
func (c *Channel[T]) Send(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	if c.cap > 0 && len(c.buf) >= c.cap {
		return ErrChannelFull
	}

	c.buf = append(c.buf, v)
	c.cond.Signal()
	return nil
}

// Receive blocks until a value is available, the channel is closed and
// drained, or ctx is done. FIFO order is global arrival order under the lock;
// there is no per-producer guarantee beyond that. Pass context.Background()
// to wait indefinitely.
func (c *Channel[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}

	// Wake all waiters when ctx fires so this receiver can notice; the
	// others re-check their own state and park again. Taking the lock
	// first serializes the broadcast with a receiver that has checked
	// ctx but not yet parked.
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cond.Broadcast()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.buf) == 0 {
		if c.closed {
			return zero, ErrChannelClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		c.cond.Wait()
	}

	return c.pop(), nil
}

// TryReceive returns the oldest buffered value without blocking. ok is false
// when the buffer is currently empty, regardless of closed state.
func (c *Channel[T]) TryReceive() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buf) == 0 {
		var zero T
		return zero, false
	}
	return c.pop(), true
}

// pop removes and returns the head of the buffer. Caller holds mu.
func (c *Channel[T]) pop() T {
	v := c.buf[0]
	var zero T
	c.buf[0] = zero // release the reference
	c.buf = c.buf[1:]
	if len(c.buf) == 0 {
		c.buf = nil
	}
	return v
}

// Close marks the channel closed and wakes every blocked receiver so each one
// re-evaluates the empty/closed condition. A single Signal here would strand
// all but one waiter. Idempotent.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cond.Broadcast()
}

// Len returns the number of buffered values.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// IsClosed reports whether Close has been called.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
