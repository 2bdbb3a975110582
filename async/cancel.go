package async

import (
	"context"
)

// CancelFunc requests cancellation of a cancelable handle. It is idempotent
// and safe to call from any goroutine.
type CancelFunc func()

// MakeCancelable starts op in a new goroutine and returns a handle for its
// outcome together with a cancel function.
//
// Calling cancel before op settles settles the handle with ErrCanceled and
// cancels op's context. Calling it afterwards has no effect. Cancellation
// only redirects what the handle reports: op keeps running until it returns
// on its own, and its late result is dropped.
func MakeCancelable[T any](ctx context.Context, op Operation[T]) (*Deferred[T], CancelFunc) {
	handle := newDeferred[T]()
	opCtx, stop := context.WithCancel(ctx)

	go func() {
		defer stop()
		defer handle.Reject(ErrAbandoned)
		handle.Settle(Call(opCtx, op))
	}()

	cancel := func() {
		if handle.Reject(ErrCanceled) {
			stop()
		}
	}
	return handle, cancel
}
