package observe

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/asyncops/async"
)

// Outcome values reported on spans and metrics.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
	OutcomePanic    = "panic"
)

// Outcome classifies an operation's failure for telemetry.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, async.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, async.ErrCanceled), errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, async.ErrPanic):
		return OutcomePanic
	default:
		return OutcomeError
	}
}

// Metrics records execution metrics for operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one settled execution.
	RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordRetry records one failed attempt that will be retried.
	RecordRetry(ctx context.Context, meta OpMeta, attempt int)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	timeoutCount metric.Int64Counter
	retryCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics registers the operation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"op.exec.total",
		metric.WithDescription("Total number of operation executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"op.exec.errors",
		metric.WithDescription("Total number of failed operation executions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	timeoutCount, err := meter.Int64Counter(
		"op.timeouts",
		metric.WithDescription("Executions that lost a timeout race"),
		metric.WithUnit("{timeout}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"op.retry.attempts",
		metric.WithDescription("Failed attempts that were retried"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"op.exec.duration_ms",
		metric.WithDescription("Operation execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		timeoutCount: timeoutCount,
		retryCount:   retryCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	outcome := Outcome(err)
	opt := metric.WithAttributes(append(meta.attributes(), attribute.String("op.outcome", outcome))...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	if outcome == OutcomeTimeout {
		m.timeoutCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordRetry(ctx context.Context, meta OpMeta, attempt int) {
	m.retryCount.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

type noopMetrics struct{}

func (noopMetrics) RecordExecution(context.Context, OpMeta, time.Duration, error) {}

func (noopMetrics) RecordRetry(context.Context, OpMeta, int) {}
