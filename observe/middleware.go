package observe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// Middleware instruments operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use; instrumented operations may run
//     concurrently.
//   - Context: the span started for an execution is carried in the ctx
//     passed to the operation.
//   - Errors: results, including failures, pass through unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	clock   clockwork.Clock
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithClock sets the clock used to time executions.
func WithClock(clock clockwork.Clock) MiddlewareOption {
	return func(m *Middleware) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMiddleware creates a Middleware. Nil components are replaced with
// no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger, opts ...MiddlewareOption) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	m := &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MiddlewareFromObserver builds a Middleware from an Observer's tracer,
// meter and logger.
func MiddlewareFromObserver(obs Observer, opts ...MiddlewareOption) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger(), opts...), nil
}

// Instrument wraps op so each invocation runs inside a span and is counted,
// timed and logged. Every invocation gets a random exec_id shared by its
// span and log entry. A panic in op is contained by async.Call and reported
// as a failure.
func Instrument[T any](m *Middleware, meta OpMeta, op async.Operation[T]) async.Operation[T] {
	return func(ctx context.Context) result.Result[T] {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		execID := uuid.NewString()
		span.SetAttributes(attribute.String("op.exec_id", execID))
		start := m.clock.Now()

		res := async.Call(ctx, op)

		duration := m.clock.Since(start)
		err := res.Err()
		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, meta, duration, err)

		logger := m.logger.WithOp(meta)
		fields := []Field{
			{Key: "exec_id", Value: execID},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
			{Key: "outcome", Value: Outcome(err)},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Error(ctx, "operation failed", fields...)
		} else {
			logger.Info(ctx, "operation completed", fields...)
		}

		return res
	}
}

// OnRetry returns a hook for async.RetryConfig.OnRetry that logs the failed
// attempt, counts it and adds a retry event to the span in ctx.
//
//	cfg.OnRetry = mw.OnRetry(ctx, meta)
func (m *Middleware) OnRetry(ctx context.Context, meta OpMeta) func(attempt int, err error, delay time.Duration) {
	logger := m.logger.WithOp(meta)
	return func(attempt int, err error, delay time.Duration) {
		m.metrics.RecordRetry(ctx, meta, attempt)
		m.tracer.RecordRetry(ctx, attempt, err, delay)
		logger.Warn(ctx, "attempt failed, retrying",
			Field{Key: "attempt", Value: attempt},
			Field{Key: "error", Value: err.Error()},
			Field{Key: "delay_ms", Value: delay.Milliseconds()},
		)
	}
}

// InstrumentRetry runs op under async.Retry inside a single span, with every
// retried attempt recorded through OnRetry. An OnRetry already set on cfg
// still runs after the middleware's hook.
func InstrumentRetry[T any](ctx context.Context, m *Middleware, meta OpMeta, op async.Operation[T], cfg async.RetryConfig, opts ...async.Option) result.Result[T] {
	return Instrument(m, meta, func(ctx context.Context) result.Result[T] {
		hook := m.OnRetry(ctx, meta)
		rc := cfg
		rc.OnRetry = func(attempt int, err error, delay time.Duration) {
			hook(attempt, err, delay)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, err, delay)
			}
		}
		return async.Retry(ctx, op, rc, opts...)
	})(ctx)
}
