package resilience

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// Rate is the number of tokens added per second.
	// Default: 100
	Rate float64 `yaml:"rate"`

	// Burst is the bucket capacity.
	// Default: 10
	Burst int `yaml:"burst"`

	// WaitOnLimit waits for a token instead of failing immediately.
	WaitOnLimit bool `yaml:"wait_on_limit"`

	// MaxWait is the longest WaitN will sleep for tokens.
	// Default: 1 second
	MaxWait time.Duration `yaml:"max_wait"`

	// Clock drives refill and waits. Default: the wall clock.
	Clock clockwork.Clock `yaml:"-"`
}

// Validate reports negative settings.
func (c RateLimiterConfig) Validate() error {
	if c.Rate < 0 {
		return fmt.Errorf("%w: rate limit rate %v is negative", ErrInvalidConfig, c.Rate)
	}
	if c.Burst < 0 {
		return fmt.Errorf("%w: rate limit burst %d is negative", ErrInvalidConfig, c.Burst)
	}
	if c.MaxWait < 0 {
		return fmt.Errorf("%w: rate limit max_wait %v is negative", ErrInvalidConfig, c.MaxWait)
	}
	return nil
}

// RateLimiter is a token bucket backed by golang.org/x/time/rate, driven
// by the configured clock.
type RateLimiter struct {
	config  RateLimiterConfig
	limiter atomic.Pointer[rate.Limiter]
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	rl := &RateLimiter{config: config}
	rl.Reset()
	return rl
}

// Limit wraps op so each invocation first takes a token. Without a token
// the invocation fails with ErrRateLimitExceeded and op is not called.
func Limit[T any](rl *RateLimiter, op async.Operation[T]) async.Operation[T] {
	return func(ctx context.Context) result.Result[T] {
		if rl.config.WaitOnLimit {
			if err := rl.Wait(ctx); err != nil {
				return result.Err[T](err)
			}
		} else if !rl.Allow() {
			return result.Err[T](ErrRateLimitExceeded)
		}

		return async.Call(ctx, op)
	}
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN takes n tokens if available.
func (rl *RateLimiter) AllowN(n int) bool {
	return rl.limiter.Load().AllowN(rl.config.Clock.Now(), n)
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.WaitN(ctx, 1)
}

// WaitN reserves n tokens and sleeps until they are available. When the
// wait would exceed MaxWait, or n exceeds Burst, it fails at once with
// ErrRateLimitExceeded and takes nothing.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clock := rl.config.Clock
	now := clock.Now()
	r := rl.limiter.Load().ReserveN(now, n)
	if !r.OK() {
		return ErrRateLimitExceeded
	}

	delay := r.DelayFrom(now)
	if delay == 0 {
		return nil
	}
	if delay > rl.config.MaxWait {
		r.CancelAt(now)
		return ErrRateLimitExceeded
	}

	if err := async.Sleep(ctx, delay, async.WithClock(clock)); err != nil {
		r.CancelAt(clock.Now())
		return err
	}
	return nil
}

// Execute runs op if the rate limit allows it.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	return Limit(rl, errOperation(op))(ctx).Err()
}

// Tokens returns the number of tokens currently available. It is negative
// while waiters hold reservations.
func (rl *RateLimiter) Tokens() float64 {
	return rl.limiter.Load().TokensAt(rl.config.Clock.Now())
}

// Reset refills the bucket and drops outstanding reservations.
func (rl *RateLimiter) Reset() {
	rl.limiter.Store(rate.NewLimiter(rate.Limit(rl.config.Rate), rl.config.Burst))
}
