package async

import (
	"context"
	"time"

	"github.com/jonwraymond/asyncops/result"
)

// WithTimeout races op against a timer of duration d.
//
// If op settles first its Result is returned unchanged. If the timer fires
// first the result is ErrTimeout; if ctx is done first the result is
// ctx.Err(). In both losing cases op's context is canceled, but op itself is
// not stopped: its goroutine keeps running until op returns, and its result
// is discarded. Operations that ignore ctx therefore outlive the call.
func WithTimeout[T any](ctx context.Context, op Operation[T], d time.Duration, opts ...Option) result.Result[T] {
	o := newOptions(opts)

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so a late settlement never blocks the detached goroutine.
	done := make(chan result.Result[T], 1)
	go func() {
		done <- Call(opCtx, op)
	}()

	timer := o.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.Chan():
		return result.Err[T](ErrTimeout)
	case <-ctx.Done():
		return result.Err[T](ctx.Err())
	}
}

// TimeoutFunc is WithTimeout for a conventional (value, error) function.
func TimeoutFunc[T any](ctx context.Context, fn func(context.Context) (T, error), d time.Duration, opts ...Option) (T, error) {
	return WithTimeout(ctx, FromFunc(fn), d, opts...).Get()
}

// Timeout wraps op so each invocation is raced against d. It composes with
// Retry to bound every attempt individually.
func Timeout[T any](op Operation[T], d time.Duration, opts ...Option) Operation[T] {
	return func(ctx context.Context) result.Result[T] {
		return WithTimeout(ctx, op, d, opts...)
	}
}
