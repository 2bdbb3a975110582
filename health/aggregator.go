package health

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// DefaultCheckTimeout bounds each check when AggregatorConfig.Timeout is unset.
const DefaultCheckTimeout = 10 * time.Second

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout bounds each individual check.
	// Default: 10 seconds
	Timeout time.Duration

	// Concurrency is the maximum number of checks in flight.
	// Default: 0 (all registered checks at once). 1 runs them sequentially.
	Concurrency int

	// Clock drives check timeouts and result timestamps.
	// Default: the wall clock.
	Clock clockwork.Clock
}

// Aggregator combines multiple health checkers into a single composite check.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates a health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	var cfg AggregatorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCheckTimeout
	}
	if cfg.Concurrency < 0 {
		cfg.Concurrency = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker under name, replacing any checker already
// registered there without changing its position.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes a checker.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		return
	}
	delete(a.checkers, name)
	a.order = slices.DeleteFunc(a.order, func(n string) bool { return n == name })
}

// CheckerNames returns the registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Clone(a.order)
}

// Check runs a single named health check under the configured timeout.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrCheckerNotFound, name)
	}

	return a.runCheck(ctx, checker), nil
}

// CheckAll runs every registered check through async.Parallel, each raced
// against the configured timeout, and returns the results keyed by name.
//
// A check that times out reports StatusUnhealthy with ErrCheckTimeout. A
// check that panics reports StatusUnhealthy with an error matching both
// ErrCheckFailed and async.ErrPanic. Checks not yet started when ctx is done
// report StatusUnhealthy with ctx.Err().
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	names, checkers := a.snapshot()
	results := make(map[string]Result, len(names))
	if len(names) == 0 {
		return results
	}

	ops := make([]async.Operation[Result], len(checkers))
	for i, c := range checkers {
		ops[i] = func(ctx context.Context) result.Result[Result] {
			return result.Ok(a.runCheck(ctx, c))
		}
	}

	limit := a.config.Concurrency
	if limit == 0 || limit > len(ops) {
		limit = len(ops)
	}

	slots, err := async.Parallel(ctx, ops, limit).Get()
	if err != nil {
		now := a.config.Clock.Now()
		for _, name := range names {
			results[name] = a.settle(result.Err[Result](err), now)
		}
		return results
	}

	for i, slot := range slots {
		results[names[i]] = a.settle(slot, a.config.Clock.Now())
	}
	return results
}

// Ready returns nil when no registered check is unhealthy. It returns
// ErrNoCheckers when nothing is registered, and otherwise an error wrapping
// ErrCheckFailed that names every unhealthy check.
func (a *Aggregator) Ready(ctx context.Context) error {
	names := a.CheckerNames()
	if len(names) == 0 {
		return ErrNoCheckers
	}

	results := a.CheckAll(ctx)
	var errs []error
	for _, name := range names {
		r, ok := results[name]
		if !ok || r.Status != StatusUnhealthy {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %s", name, r.Message))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCheckFailed, errors.Join(errs...))
}

// OverallStatus returns the worst status among results. An empty set is
// healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	return OverallStatus(results)
}

// OverallStatus returns the worst status among results. An empty set is
// healthy.
func OverallStatus(results map[string]Result) Status {
	status := StatusHealthy
	for _, r := range results {
		status = max(status, r.Status)
	}
	return status
}

func (a *Aggregator) snapshot() ([]string, []Checker) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := slices.Clone(a.order)
	checkers := make([]Checker, len(names))
	for i, name := range names {
		checkers[i] = a.checkers[name]
	}
	return names, checkers
}

func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	clock := a.config.Clock
	start := clock.Now()

	res := async.WithTimeout(ctx, operation(checker), a.config.Timeout, async.WithClock(clock))

	r := a.settle(res, start)
	r.Duration = clock.Since(start)
	return r
}

// settle converts an operation outcome into a Result stamped with at when
// the check left Timestamp unset.
func (a *Aggregator) settle(res result.Result[Result], at time.Time) Result {
	r, err := res.Get()
	switch {
	case err == nil:
	case errors.Is(err, async.ErrTimeout):
		r = Unhealthy("check timed out", ErrCheckTimeout)
	case errors.Is(err, async.ErrPanic):
		r = Unhealthy("check panicked", fmt.Errorf("%w: %w", ErrCheckFailed, err))
	default:
		r = Unhealthy("check not completed", err)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = at
	}
	return r
}

// Checker returns the aggregator as a single Checker named "aggregate"
// whose status is the worst of its members.
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string {
	return "aggregate"
}

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, r := range results {
		details[name] = map[string]any{
			"status":   r.Status.String(),
			"message":  r.Message,
			"duration": r.Duration.String(),
		}
	}

	var message string
	switch status {
	case StatusHealthy:
		message = "all checks passed"
	case StatusDegraded:
		message = "some checks degraded"
	default:
		message = "some checks failed"
	}

	r := Result{Status: status, Message: message, Details: details}
	if status == StatusUnhealthy {
		r.Error = ErrCheckFailed
	}
	return r
}
