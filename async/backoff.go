package async

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// JitterSource returns a uniformly distributed value in [0, 1).
type JitterSource func() float64

// #nosec G404 -- jitter is non-cryptographic timing variance.
var defaultJitter JitterSource = rand.Float64

const (
	jitterLow  = 0.75
	jitterSpan = 0.5
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelay is the delay before the first retry.
	// Default: 1s
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay caps every computed delay, jitter included.
	// Default: 10s
	MaxDelay time.Duration `yaml:"max_delay"`

	// BackoffFactor multiplies the delay after each failed attempt.
	// Default: 2.0
	BackoffFactor float64 `yaml:"backoff_factor"`

	// Jitter scales each delay by a random factor in [0.75, 1.25].
	// Default: true
	Jitter bool `yaml:"jitter"`

	// RetryIf reports whether a failure should be retried.
	// Default: every failure is retried.
	RetryIf func(err error) bool `yaml:"-"`

	// OnRetry is called after a failed attempt, before the backoff sleep.
	// attempt is the 1-based number of the attempt that failed.
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`
}

// DefaultRetryConfig returns the default retry policy: 3 attempts, 1s initial
// delay doubling up to 10s, with jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
		Jitter:        true,
	}
}

// Validate reports configuration values outside their documented ranges.
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	case c.InitialDelay < 0:
		return fmt.Errorf("%w: initial delay must not be negative, got %v", ErrInvalidConfig, c.InitialDelay)
	case c.MaxDelay < c.InitialDelay:
		return fmt.Errorf("%w: max delay %v is below initial delay %v", ErrInvalidConfig, c.MaxDelay, c.InitialDelay)
	case c.BackoffFactor < 1 || math.IsNaN(c.BackoffFactor) || math.IsInf(c.BackoffFactor, 0):
		return fmt.Errorf("%w: backoff factor must be a finite value >= 1, got %v", ErrInvalidConfig, c.BackoffFactor)
	}
	return nil
}

// ComputeDelay returns the wait before the retry that follows the given
// zero-based attempt: min(InitialDelay * BackoffFactor^attempt, MaxDelay).
// With jitter enabled the delay is scaled by a factor in [0.75, 1.25] drawn
// from jitter (nil uses math/rand/v2), floored to a whole millisecond and
// clamped to MaxDelay again.
func ComputeDelay(attempt int, cfg RetryConfig, jitter JitterSource) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	ceiling := float64(cfg.MaxDelay)
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
	if math.IsNaN(delay) {
		// 0 * +Inf: a zero initial delay stays zero at any attempt.
		delay = 0
	}
	if delay > ceiling {
		delay = ceiling
	}

	if cfg.Jitter {
		if jitter == nil {
			jitter = defaultJitter
		}
		factor := jitterLow + jitter()*jitterSpan
		ms := float64(time.Millisecond)
		delay = math.Floor(delay*factor/ms) * ms
		if delay > ceiling {
			delay = ceiling
		}
	}

	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}
