package exporters

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracingExporter_UnknownName(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), "invalid")
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("error = %v, want ErrUnknownExporter", err)
	}
}

func TestNewMetricsReader_UnknownName(t *testing.T) {
	_, err := NewMetricsReader(context.Background(), "badvalue")
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("error = %v, want ErrUnknownExporter", err)
	}
}

func TestNewTracingExporter_StdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	exp, err := NewTracingExporter(context.Background(), "stdout", WithWriter(&buf))
	if err != nil {
		t.Fatalf("NewTracingExporter() error = %v", err)
	}

	stub := tracetest.SpanStub{Name: "op.exec.demo"}
	if err := exp.ExportSpans(context.Background(), tracetest.SpanStubs{stub}.Snapshots()); err != nil {
		t.Fatalf("ExportSpans() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("op.exec.demo")) {
		t.Errorf("stdout exporter output missing span name: %s", buf.String())
	}
}

func TestNewMetricsReader_Stdout(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "stdout", WithWriter(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("NewMetricsReader() error = %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

func TestNewTracingExporter_OtlpMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	_, err := NewTracingExporter(context.Background(), "otlp")
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Errorf("error = %v, want ErrEndpointNotConfigured", err)
	}
}

func TestNewTracingExporter_OtlpWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")

	exp, err := NewTracingExporter(context.Background(), "otlp")
	if err != nil {
		t.Fatalf("NewTracingExporter() error = %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}
}

func TestNewTracingExporter_JaegerMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")

	_, err := NewTracingExporter(context.Background(), "jaeger")
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Errorf("error = %v, want ErrEndpointNotConfigured", err)
	}
}

func TestNewMetricsReader_OtlpMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	_, err := NewMetricsReader(context.Background(), "otlp")
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Errorf("error = %v, want ErrEndpointNotConfigured", err)
	}
}

func TestNewMetricsReader_Prometheus(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "prometheus")
	if err != nil {
		t.Fatalf("NewMetricsReader() error = %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

func TestNone(t *testing.T) {
	if _, err := NewTracingExporter(context.Background(), ""); err != nil {
		t.Errorf("NewTracingExporter(\"\") error = %v", err)
	}
	if _, err := NewMetricsReader(context.Background(), "none"); err != nil {
		t.Errorf("NewMetricsReader(none) error = %v", err)
	}
}
