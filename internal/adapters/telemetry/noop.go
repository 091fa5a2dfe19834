package telemetry

import (
	"context"

	"go.trai.ch/tomobench/internal/core/ports"
)

// NoOpTracer is a ports.Tracer that records nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start returns ctx unchanged and a span that discards everything.
func (t *NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, NoOpSpan{}
}

// NoOpSpan is a ports.Span that discards everything.
type NoOpSpan struct{}

// End does nothing.
func (NoOpSpan) End() {}

// RecordError does nothing.
func (NoOpSpan) RecordError(error) {}

// SetAttribute does nothing.
func (NoOpSpan) SetAttribute(string, any) {}
