package async

import (
	"context"

	"github.com/evan-idocoding/zkit/rt/safego"

	"github.com/jonwraymond/asyncops/result"
)

// Operation is a unit of asynchronous work that settles to a Result.
//
// Contract:
//   - Context: ctx is a cooperative stop signal. Operations should return
//     promptly once it is done, but nothing in this package relies on it.
//   - Errors: failures are returned as values; a panic is recovered by Call
//     and reported as a *PanicError, a runtime.Goexit as ErrAbandoned.
//   - Ownership: the operation is owned by the caller and may be invoked more
//     than once (Retry) or never (Sequence after a failure).
type Operation[T any] func(ctx context.Context) result.Result[T]

// FromFunc adapts a conventional (value, error) function to an Operation.
func FromFunc[T any](fn func(context.Context) (T, error)) Operation[T] {
	return func(ctx context.Context) result.Result[T] {
		return result.From(fn(ctx))
	}
}

// Value returns an Operation that always succeeds with v.
func Value[T any](v T) Operation[T] {
	return func(context.Context) result.Result[T] {
		return result.Ok(v)
	}
}

// Fail returns an Operation that always fails with err.
func Fail[T any](err error) Operation[T] {
	return func(context.Context) result.Result[T] {
		return result.Err[T](err)
	}
}

// Call invokes op and guarantees a settled Result: a nil operation fails
// with ErrNilOperation, a panic becomes a *PanicError and an operation that
// exits through runtime.Goexit fails with ErrAbandoned. op runs on its own
// goroutine and Call blocks until it finishes.
func Call[T any](ctx context.Context, op Operation[T]) result.Result[T] {
	if op == nil {
		return result.Err[T](ErrNilOperation)
	}

	var (
		res     result.Result[T]
		settled bool
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		safego.Run(ctx, func(ctx context.Context) {
			res = op(ctx)
			settled = true
		},
			safego.WithName("async.operation"),
			safego.WithPanicHandler(func(_ context.Context, info safego.PanicInfo) {
				res = result.Err[T](&PanicError{Value: info.Value, Stack: info.Stack})
				settled = true
			}),
		)
	}()
	<-done

	if !settled {
		return result.Err[T](ErrAbandoned)
	}
	return res
}
