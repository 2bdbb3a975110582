package health

import (
	"context"
	"time"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// Status represents the health status of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component works but with reduced capacity.
	StatusDegraded
	// StatusUnhealthy indicates the component is not functioning.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of one health check.
//
// Duration and Timestamp are filled in by the Aggregator; a checker only
// needs to set them when it runs outside one.
type Result struct {
	Status  Status
	Message string
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check started.
	Timestamp time.Time

	// Error is set for unhealthy results.
	Error error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err}
}

// FromError returns Healthy(message) for a nil err and an unhealthy result
// carrying err otherwise.
func FromError(message string, err error) Result {
	if err != nil {
		return Unhealthy(err.Error(), err)
	}
	return Healthy(message)
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration sets the duration on a result.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker is the interface for health checks.
//
// Check should honor ctx; the Aggregator abandons checks that outlive their
// timeout but cannot stop them.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

// NewPingChecker returns a Checker that is healthy when ping succeeds and
// unhealthy with ping's error otherwise.
func NewPingChecker(name string, ping func(context.Context) error) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return FromError("reachable", ping(ctx))
	})
}

// operation adapts c to an async.Operation. Checks report failure through
// their Result, so the operation itself only fails on panic or timeout.
func operation(c Checker) async.Operation[Result] {
	return func(ctx context.Context) result.Result[Result] {
		return result.Ok(c.Check(ctx))
	}
}
