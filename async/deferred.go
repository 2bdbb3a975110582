package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/asyncops/result"
)

// ResolveFunc settles a Deferred with a value. It reports whether this call
// was the one that settled it.
type ResolveFunc[T any] func(v T) bool

// RejectFunc settles a Deferred with an error. It reports whether this call
// was the one that settled it.
type RejectFunc func(err error) bool

// Deferred is an externally settled asynchronous slot.
//
// Contract:
//   - Settlement: the first Resolve, Reject or Settle wins; later calls are
//     no-ops that return false and never panic.
//   - Concurrency: all methods are safe for concurrent use. Any number of
//     goroutines may Await the same Deferred and all observe the same Result.
//   - Construction: use NewDeferred; the zero value is not usable.
type Deferred[T any] struct {
	once sync.Once
	done chan struct{}
	res  result.Result[T]
}

// NewDeferred returns an empty Deferred along with its resolve and reject
// functions.
func NewDeferred[T any]() (*Deferred[T], ResolveFunc[T], RejectFunc) {
	d := newDeferred[T]()
	return d, d.Resolve, d.Reject
}

func newDeferred[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Settle stores r if the Deferred is still pending.
func (d *Deferred[T]) Settle(r result.Result[T]) bool {
	settled := false
	d.once.Do(func() {
		d.res = r
		settled = true
		close(d.done)
	})
	return settled
}

// Resolve settles the Deferred with v.
func (d *Deferred[T]) Resolve(v T) bool {
	return d.Settle(result.Ok(v))
}

// Reject settles the Deferred with err.
func (d *Deferred[T]) Reject(err error) bool {
	return d.Settle(result.Err[T](err))
}

// Done returns a channel closed once the Deferred is settled.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether the Deferred has been settled.
func (d *Deferred[T]) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Peek returns the settled Result without blocking, or none while pending.
func (d *Deferred[T]) Peek() result.Option[result.Result[T]] {
	if !d.Settled() {
		return result.None[result.Result[T]]()
	}
	return result.Some(d.res)
}

// Await blocks until the Deferred settles or ctx is done. Giving up on ctx
// returns an error matching both ErrCanceled and ctx.Err() to this caller
// only; the Deferred stays pending.
func (d *Deferred[T]) Await(ctx context.Context) result.Result[T] {
	select {
	case <-d.done:
		return d.res
	default:
	}

	select {
	case <-d.done:
		return d.res
	case <-ctx.Done():
		return result.Err[T](fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()))
	}
}

// Operation returns an Operation that awaits the Deferred, so a manually
// settled slot can be fed to Sequence, Parallel or WithTimeout.
func (d *Deferred[T]) Operation() Operation[T] {
	return d.Await
}
