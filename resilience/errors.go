package resilience

import "errors"

// Sentinel errors for policy rejections. They are returned as failure values
// before the guarded operation runs; failures produced by the operation
// itself pass through unchanged.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("resilience: invalid config")
)
