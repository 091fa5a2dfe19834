// Package telemetry adapts OpenTelemetry tracing to the ports.Tracer interface.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/tomobench/internal/core/ports"
)

// OTelTracer implements ports.Tracer on top of the global OpenTelemetry provider.
type OTelTracer struct {
	name string
}

var _ ports.Tracer = (*OTelTracer)(nil)

// NewOTelTracer creates a tracer with the given instrumentation name.
// The provider is looked up on every Start so that one installed later is honoured.
func NewOTelTracer(name string) *OTelTracer {
	return &OTelTracer{name: name}
}

// Start creates a new span carrying any attributes passed as options.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		attrs = append(attrs, toAttribute(k, v))
	}

	ctx, span := otel.Tracer(t.name).Start(ctx, name, trace.WithAttributes(attrs...))

	return ctx, &OTelSpan{span: span}
}

// OTelSpan implements ports.Span using OpenTelemetry.
type OTelSpan struct {
	span trace.Span
}

// End completes the span.
func (s *OTelSpan) End() {
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case time.Duration:
		return attribute.Int64(key+"_ns", v.Nanoseconds())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
