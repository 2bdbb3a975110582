package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpMeta identifies an instrumented operation.
type OpMeta struct {
	Namespace string   // Grouping such as the owning component (optional)
	Name      string   // Operation name (required)
	Tags      []string // Free-form labels (optional)
}

// SpanName returns op.exec.<namespace>.<name>, or op.exec.<name> without a
// namespace.
func (m OpMeta) SpanName() string {
	return "op.exec." + m.OpID()
}

// OpID returns namespace.name, or name without a namespace.
func (m OpMeta) OpID() string {
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// Validate reports a missing name.
func (m OpMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingOpName
	}
	return nil
}

func (m OpMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("op.id", m.OpID()),
		attribute.String("op.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("op.namespace", m.Namespace))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with per-operation spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan and RecordRetry are best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one execution of an operation.
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the failure and its outcome.
	EndSpan(span trace.Span, err error)

	// RecordRetry adds a retry event to the span in ctx.
	RecordRetry(ctx context.Context, attempt int, err error, delay time.Duration)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("op.error", false))
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("op.tags", meta.Tags))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	span.SetAttributes(attribute.String("op.outcome", Outcome(err)))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (t *tracerImpl) RecordRetry(ctx context.Context, attempt int, err error, delay time.Duration) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("retry", trace.WithAttributes(
		attribute.Int("op.retry.attempt", attempt),
		attribute.String("op.retry.error", err.Error()),
		attribute.Int64("op.retry.delay_ms", delay.Milliseconds()),
	))
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}

func (t *noopTracer) RecordRetry(context.Context, int, error, time.Duration) {}
