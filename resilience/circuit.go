package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means operations pass through.
	StateClosed State = iota
	// StateOpen means operations are rejected with ErrCircuitOpen.
	StateOpen
	// StateHalfOpen means a limited number of probe operations may run.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	// Default: 5
	MaxFailures int `yaml:"max_failures"`

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// HalfOpenMaxRequests is the number of probes admitted while half-open.
	// Default: 1
	HalfOpenMaxRequests int `yaml:"half_open_max_requests"`

	// OnStateChange is called with the lock held; it must not call back
	// into the breaker.
	OnStateChange func(from, to State) `yaml:"-"`

	// IsFailure reports whether an operation's failure counts against the
	// circuit. Default: every non-nil error.
	IsFailure func(err error) bool `yaml:"-"`

	// Clock drives the reset timeout. Default: the wall clock.
	Clock clockwork.Clock `yaml:"-"`
}

// Validate reports negative settings. Zero values mean "use the default".
func (c CircuitBreakerConfig) Validate() error {
	if c.MaxFailures < 0 {
		return fmt.Errorf("%w: circuit breaker max_failures %d is negative", ErrInvalidConfig, c.MaxFailures)
	}
	if c.ResetTimeout < 0 {
		return fmt.Errorf("%w: circuit breaker reset_timeout %v is negative", ErrInvalidConfig, c.ResetTimeout)
	}
	if c.HalfOpenMaxRequests < 0 {
		return fmt.Errorf("%w: circuit breaker half_open_max_requests %d is negative", ErrInvalidConfig, c.HalfOpenMaxRequests)
	}
	return nil
}

// CircuitBreaker stops invoking an operation after repeated failures and
// lets a probe through once ResetTimeout has elapsed.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	rejected      int64
	lastFailure   time.Time
	halfOpenCount int
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Protect wraps op so every invocation passes through cb. A rejected
// invocation fails with ErrCircuitOpen without calling op.
func Protect[T any](cb *CircuitBreaker, op async.Operation[T]) async.Operation[T] {
	return func(ctx context.Context) result.Result[T] {
		if err := cb.admit(); err != nil {
			return result.Err[T](err)
		}

		res := async.Call(ctx, op)
		cb.record(res.Err())
		return res
	}
}

// Execute runs op through the circuit breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	return Protect(cb, errOperation(op))(ctx).Err()
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset closes the circuit and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	old := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCount = 0
	cb.notifyLocked(old)
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		cb.rejected++
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			cb.rejected++
			return ErrCircuitOpen
		}
		cb.halfOpenCount++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := cb.config.IsFailure(err)
	old := cb.state

	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			cb.successes++
			break
		}
		cb.failures++
		cb.lastFailure = cb.config.Clock.Now()
		if cb.failures >= cb.config.MaxFailures {
			cb.state = StateOpen
		}

	case StateHalfOpen:
		if failed {
			// A failed probe restarts the open period.
			cb.lastFailure = cb.config.Clock.Now()
			cb.state = StateOpen
			break
		}
		cb.state = StateClosed
		cb.failures = 0
		cb.successes = 0
	}

	cb.notifyLocked(old)
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && cb.config.Clock.Since(cb.lastFailure) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenCount = 0
		cb.notifyLocked(StateOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) notifyLocked(from State) {
	if from != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, cb.state)
	}
}

// Metrics returns a snapshot of the breaker's counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:       cb.currentStateLocked(),
		Failures:    cb.failures,
		Successes:   cb.successes,
		Rejected:    cb.rejected,
		LastFailure: cb.lastFailure,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	Successes   int
	Rejected    int64
	LastFailure time.Time
}

// errOperation adapts an error-only function to an Operation.
func errOperation(op func(context.Context) error) async.Operation[struct{}] {
	return func(ctx context.Context) result.Result[struct{}] {
		if err := op(ctx); err != nil {
			return result.Err[struct{}](err)
		}
		return result.Ok(struct{}{})
	}
}
