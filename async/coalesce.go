package async

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/asyncops/result"
)

// Coalescer collapses concurrent calls that share a key into a single
// in-flight operation. The zero value is ready to use.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: each caller may stop waiting via its own ctx; the shared
//     operation runs detached from any single caller's cancellation.
type Coalescer[T any] struct {
	group singleflight.Group
}

// Do runs op under key unless a call for key is already in flight, in which
// case it waits for that call's outcome. shared reports whether the outcome
// was delivered to more than one caller.
func (c *Coalescer[T]) Do(ctx context.Context, key string, op Operation[T]) (res result.Result[T], shared bool) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return Call(detached, op).Get()
	})

	select {
	case <-ctx.Done():
		return result.Err[T](ctx.Err()), false
	case r := <-ch:
		if r.Err != nil {
			return result.Err[T](r.Err), r.Shared
		}
		v, _ := r.Val.(T)
		return result.Ok(v), r.Shared
	}
}

// Forget drops key so the next Do starts a fresh operation even if one is
// still in flight.
func (c *Coalescer[T]) Forget(key string) {
	c.group.Forget(key)
}
