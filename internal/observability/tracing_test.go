package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/motorsim/internal/logging"
)

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Fatalf("noop provider produced a valid span context")
	}
	span.End()
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"}, nil)
	if err == nil || !strings.Contains(err.Error(), "zipkin") {
		t.Fatalf("err = %v, want unsupported exporter", err)
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := TracingConfig{Enabled: true, Exporter: "stdout", SampleRatio: 1, Output: &buf}
	shutdown, err := InitTracing(context.Background(), cfg, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	t.Cleanup(func() {
		_, _ = InitTracing(context.Background(), TracingConfig{}, nil)
	})

	_, span := Tracer().Start(context.Background(), "sim/flight")
	if !span.SpanContext().IsValid() {
		t.Fatalf("sampled span has an invalid context")
	}
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "sim/flight") {
		t.Fatalf("exporter output missing span name: %q", buf.String())
	}
}

func TestShutdownWithTimeoutLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Output: &buf})
	ShutdownWithTimeout(context.Background(), func(context.Context) error {
		return errors.New("flush failed")
	}, log)
	if !strings.Contains(buf.String(), "flush failed") {
		t.Fatalf("log = %q, want shutdown error", buf.String())
	}
	ShutdownWithTimeout(context.Background(), nil, log)
}
