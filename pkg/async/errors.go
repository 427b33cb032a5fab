package async

import "errors"

var (
	// ErrChannelClosed is returned by Send on a closed channel, and by
	// Receive once the channel is closed and its backlog is drained.
	ErrChannelClosed = errors.New("channel is closed")

	// ErrChannelFull is returned by Send on a bounded channel that is at
	// capacity (backpressure).
	ErrChannelFull = errors.New("channel is full")

	// ErrLoopStopped is returned by Submit after the event loop has been
	// stopped.
	ErrLoopStopped = errors.New("event loop is stopped")

	// ErrLoopRunning is returned by Run when the event loop is already
	// running.
	ErrLoopRunning = errors.New("event loop is already running")
)
