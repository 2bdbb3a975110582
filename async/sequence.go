package async

import (
	"context"

	"github.com/jonwraymond/asyncops/result"
)

// Sequence runs ops one after another in slice order and returns their
// values in the same order.
//
// Operation i+1 starts only after operation i has settled. The first failure
// stops the sequence and is returned verbatim; later operations are never
// invoked and no partial values are returned. If ctx is done before an
// operation starts, Sequence fails with ctx.Err() instead of starting it.
func Sequence[T any](ctx context.Context, ops []Operation[T]) result.Result[[]T] {
	values := make([]T, 0, len(ops))

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return result.Err[[]T](err)
		}

		v, err := Call(ctx, op).Get()
		if err != nil {
			return result.Err[[]T](err)
		}
		values = append(values, v)
	}

	return result.Ok(values)
}
