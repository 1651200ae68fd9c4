// Package transport issues streaming webhook exchanges with progress
// notification and cancellation.
package transport

import (
	"context"
	"sync"
)

// Request describes one outbound webhook exchange. Payload is marshaled to
// JSON; Headers extend and override the defaults.
type Request struct {
	URL     string
	Headers map[string]string
	Payload any
}

// ProgressFunc receives the cumulative response body text read so far. Calls
// are sequential, in arrival order. Returning an error aborts the exchange
// and the handle settles with that error.
type ProgressFunc func(snapshot string) error

// Streamer starts streaming webhook exchanges. Start returns once the
// exchange is issued; completion is observed through the handle.
type Streamer interface {
	Start(ctx context.Context, req Request, onProgress ProgressFunc) (*Handle, error)
}

// Handle tracks one in-flight exchange. It settles exactly once: Done is
// closed and Err reports nil on success, context.Canceled after Cancel, or
// the transport failure otherwise.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// NewHandle creates a handle whose Cancel invokes the given function.
// Streamer implementations settle the handle when the exchange completes.
func NewHandle(cancel context.CancelFunc) *Handle {
	if cancel == nil {
		cancel = func() {}
	}
	return &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel aborts the underlying exchange. Progress calls already in flight
// may still be delivered; callers suppress them on their side.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the exchange settles.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err reports the settle result. Only meaningful after Done is closed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Settle records the final result and closes Done. Subsequent calls are
// no-ops.
func (h *Handle) Settle(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return
	default:
	}
	h.err = err
	close(h.done)
}
