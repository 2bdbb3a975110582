package async

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/asyncops/result"
)

// Parallel runs ops with at most limit of them in flight and returns one
// Result per operation, indexed by the operation's position in ops.
//
// min(limit, len(ops)) workers each claim the next unclaimed index from a
// shared atomic cursor until none remain, so execution order is unspecified
// but result placement always follows input order.
//
// Individual failures, including panics, are captured into their own slot
// and do not stop the batch; the outer Result is ok in that case. The outer
// Result fails only when scheduling itself cannot proceed: limit < 1 yields
// ErrInvalidLimit and a fault in the worker machinery yields a *PanicError.
// Once ctx is done, unclaimed operations are not started and their slots
// hold ctx.Err(). Use result.Collect on the slots for fail-fast semantics.
func Parallel[T any](ctx context.Context, ops []Operation[T], limit int) result.Result[[]result.Result[T]] {
	if limit < 1 {
		return result.Err[[]result.Result[T]](ErrInvalidLimit)
	}

	slots := make([]result.Result[T], len(ops))
	if len(ops) == 0 {
		return result.Ok(slots)
	}

	workers := min(limit, len(ops))
	total := int64(len(ops))

	var (
		cursor atomic.Int64
		g      errgroup.Group
	)
	for range workers {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = &PanicError{Value: p, Stack: debug.Stack()}
				}
			}()

			for {
				i := cursor.Add(1) - 1
				if i >= total {
					return nil
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					slots[i] = result.Err[T](ctxErr)
					continue
				}
				slots[i] = Call(ctx, ops[i])
			}
		})
	}

	if err := g.Wait(); err != nil {
		return result.Err[[]result.Result[T]](err)
	}
	return result.Ok(slots)
}

// ParallelFunc runs fns through Parallel and returns the per-slot results.
// The error is non-nil only for scheduling failures.
func ParallelFunc[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) ([]result.Result[T], error) {
	ops := make([]Operation[T], len(fns))
	for i, fn := range fns {
		ops[i] = FromFunc(fn)
	}
	return Parallel(ctx, ops, limit).Get()
}
