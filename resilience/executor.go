package resilience

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// Executor composes resilience policies around an operation.
//
// Policies apply outermost first:
//  1. Rate limiter: one token per Run, not per attempt
//  2. Bulkhead: one slot held across all attempts
//  3. Circuit breaker: one admission and one recorded outcome per Run
//  4. Retry: async.Retry with the configured backoff
//  5. Timeout: async.WithTimeout around each attempt
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *async.RetryConfig
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        time.Duration
	clock          clockwork.Clock
	jitter         async.JitterSource
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor. With no options Run just calls the
// operation with panic containment.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds a retry loop.
func WithRetry(cfg async.RetryConfig) ExecutorOption {
	return func(e *Executor) {
		e.retry = &cfg
	}
}

// WithRateLimiter adds rate limiting.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithBulkhead adds bulkhead isolation.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout bounds every attempt to d. Non-positive values disable it.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithClock sets the clock used for retry backoff and attempt timeouts.
func WithClock(c clockwork.Clock) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithJitter sets the random source for retry jitter.
func WithJitter(j async.JitterSource) ExecutorOption {
	return func(e *Executor) {
		e.jitter = j
	}
}

// Wrap returns op decorated with every policy configured on e.
func Wrap[T any](e *Executor, op async.Operation[T]) async.Operation[T] {
	opts := []async.Option{async.WithClock(e.clock), async.WithJitter(e.jitter)}
	wrapped := op

	if e.timeout > 0 {
		wrapped = async.Timeout(wrapped, e.timeout, opts...)
	}

	if e.retry != nil {
		inner, cfg := wrapped, *e.retry
		wrapped = func(ctx context.Context) result.Result[T] {
			return async.Retry(ctx, inner, cfg, opts...)
		}
	}

	if e.circuitBreaker != nil {
		wrapped = Protect(e.circuitBreaker, wrapped)
	}

	if e.bulkhead != nil {
		wrapped = Isolate(e.bulkhead, wrapped)
	}

	if e.rateLimiter != nil {
		wrapped = Limit(e.rateLimiter, wrapped)
	}

	return wrapped
}

// Run executes op through every policy configured on e.
func Run[T any](ctx context.Context, e *Executor, op async.Operation[T]) result.Result[T] {
	return async.Call(ctx, Wrap(e, op))
}

// Execute runs an error-only function through the executor.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	return Run(ctx, e, errOperation(op)).Err()
}
