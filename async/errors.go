package async

import (
	"errors"
	"fmt"
)

// Sentinel errors for coordination failures synthesized by this package.
// Errors produced by caller operations are never wrapped or replaced.
var (
	// ErrTimeout is returned when WithTimeout's timer fires first.
	ErrTimeout = errors.New("async: operation timed out")

	// ErrCanceled is returned by a cancelable handle canceled before settlement.
	ErrCanceled = errors.New("async: operation canceled")

	// ErrNoAttempts is returned when Retry runs zero attempts.
	ErrNoAttempts = errors.New("async: no attempts were made")

	// ErrInvalidLimit is returned when Parallel is given a limit below 1.
	ErrInvalidLimit = errors.New("async: concurrency limit must be positive")

	// ErrInvalidConfig is returned by RetryConfig.Validate.
	ErrInvalidConfig = errors.New("async: invalid retry config")

	// ErrNilOperation is returned when a nil Operation is invoked.
	ErrNilOperation = errors.New("async: operation is nil")

	// ErrAbandoned is returned when an operation exits through
	// runtime.Goexit without producing a Result.
	ErrAbandoned = errors.New("async: operation exited without settling")

	// ErrPanic is matched by every *PanicError.
	ErrPanic = errors.New("async: operation panicked")
)

// PanicError carries a recovered panic as a failure value.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: operation panicked: %v", e.Value)
}

// Unwrap makes errors.Is(err, ErrPanic) hold.
func (e *PanicError) Unwrap() error {
	return ErrPanic
}
