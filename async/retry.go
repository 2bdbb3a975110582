package async

import (
	"context"

	"github.com/jonwraymond/asyncops/result"
)

// Retry invokes op until it succeeds or cfg.MaxAttempts attempts have failed.
//
// Between failed attempts Retry sleeps ComputeDelay(attempt, cfg) on the
// configured clock; there is no sleep after the final attempt. When every
// attempt fails, the last failure is returned verbatim so callers can match
// on the operation's own error. A failure rejected by cfg.RetryIf is also
// returned verbatim without further attempts. If ctx is done during a backoff
// sleep, Retry returns ctx.Err(). A config with MaxAttempts below 1 runs no
// attempts and fails with ErrNoAttempts.
func Retry[T any](ctx context.Context, op Operation[T], cfg RetryConfig, opts ...Option) result.Result[T] {
	o := newOptions(opts)

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		res := Call(ctx, op)
		if res.OK() {
			return res
		}

		err := res.Err()
		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return res
		}
		if attempt == cfg.MaxAttempts-1 {
			return res
		}

		delay := ComputeDelay(attempt, cfg, o.jitter)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, delay)
		}

		if err := sleep(ctx, o.clock, delay); err != nil {
			return result.Err[T](err)
		}
	}

	return result.Err[T](ErrNoAttempts)
}

// RetryFunc is Retry for a conventional (value, error) function.
func RetryFunc[T any](ctx context.Context, fn func(context.Context) (T, error), cfg RetryConfig, opts ...Option) (T, error) {
	return Retry(ctx, FromFunc(fn), cfg, opts...).Get()
}
