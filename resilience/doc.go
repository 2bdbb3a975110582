// Package resilience composes policies around async operations.
//
// Each policy is a decorator over async.Operation and can be used on its own:
//
//   - Protect: a circuit breaker that stops calling a failing dependency and
//     probes it again after a reset timeout.
//   - Limit: a token bucket rate limiter.
//   - Isolate: a bulkhead that caps concurrent invocations.
//
// Retry and per-attempt timeouts come from package async. An Executor stacks
// all of them in a fixed order, rate limiter outermost and timeout innermost,
// so that one Run consumes one token, holds one bulkhead slot and records one
// circuit breaker outcome no matter how many attempts it makes.
//
// Rejections are failure values (ErrCircuitOpen, ErrRateLimitExceeded,
// ErrBulkheadFull). Failures produced by the operation pass through
// unchanged, so callers can match on their own errors after a Run.
//
// # Usage
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 100, Burst: 10})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 5})),
//	    resilience.WithRetry(async.DefaultRetryConfig()),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	res := resilience.Run(ctx, exec, fetchProfile)
//
// # Configuration
//
// LoadConfig reads the same settings from YAML; NewExecutorFromConfig turns
// the result into an Executor.
//
// # Time
//
// Every policy takes a clockwork.Clock. Tests drive timeouts, backoff and
// circuit reset with a fake clock instead of sleeping.
package resilience
