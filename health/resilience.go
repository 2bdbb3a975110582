package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/asyncops/resilience"
)

// NewCircuitChecker reports a circuit breaker's state: closed is healthy,
// half-open is degraded and open is unhealthy with resilience.ErrCircuitOpen.
func NewCircuitChecker(name string, cb *resilience.CircuitBreaker) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		m := cb.Metrics()
		details := map[string]any{
			"state":     m.State.String(),
			"failures":  m.Failures,
			"successes": m.Successes,
			"rejected":  m.Rejected,
		}
		if !m.LastFailure.IsZero() {
			details["last_failure"] = m.LastFailure
		}

		switch m.State {
		case resilience.StateOpen:
			return Unhealthy("circuit open", resilience.ErrCircuitOpen).WithDetails(details)
		case resilience.StateHalfOpen:
			return Degraded("circuit half-open").WithDetails(details)
		default:
			return Healthy("circuit closed").WithDetails(details)
		}
	})
}

// BulkheadCheckerConfig sets the slot usage thresholds of a BulkheadChecker.
type BulkheadCheckerConfig struct {
	// WarningThreshold is the usage ratio (0.0-1.0) reported as degraded.
	// Default: 0.80
	WarningThreshold float64

	// CriticalThreshold is the usage ratio (0.0-1.0) reported as unhealthy.
	// Default: 1.0
	CriticalThreshold float64
}

// BulkheadChecker reports how close a bulkhead is to saturation.
type BulkheadChecker struct {
	name     string
	bulkhead *resilience.Bulkhead
	config   BulkheadCheckerConfig
}

// NewBulkheadChecker creates a BulkheadChecker. Out of range thresholds fall
// back to the defaults.
func NewBulkheadChecker(name string, b *resilience.Bulkhead, config BulkheadCheckerConfig) *BulkheadChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold > 1 {
		config.WarningThreshold = 0.80
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold > 1 {
		config.CriticalThreshold = 1.0
	}
	if config.WarningThreshold > config.CriticalThreshold {
		config.WarningThreshold = config.CriticalThreshold
	}

	return &BulkheadChecker{name: name, bulkhead: b, config: config}
}

func (c *BulkheadChecker) Name() string { return c.name }

// Check compares the bulkhead's active slots against its capacity.
func (c *BulkheadChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context canceled", err)
	}

	m := c.bulkhead.Metrics()
	usage := float64(m.Active) / float64(m.MaxConcurrent)

	details := map[string]any{
		"active":         m.Active,
		"max_active":     m.MaxActive,
		"available":      m.Available,
		"max_concurrent": m.MaxConcurrent,
		"rejected":       m.Rejected,
		"usage_percent":  usage * 100,
	}

	switch {
	case usage >= c.config.CriticalThreshold:
		return Unhealthy(
			fmt.Sprintf("bulkhead saturated: %d/%d slots", m.Active, m.MaxConcurrent),
			resilience.ErrBulkheadFull,
		).WithDetails(details)
	case usage >= c.config.WarningThreshold:
		return Degraded(
			fmt.Sprintf("bulkhead usage high: %.1f%%", usage*100),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("bulkhead usage normal: %.1f%%", usage*100),
		).WithDetails(details)
	}
}
