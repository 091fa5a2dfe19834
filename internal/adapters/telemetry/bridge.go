package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/tomobench/internal/core/ports"
)

// Bridge is an sdktrace.SpanProcessor reporting each finished span to the logger.
// It backs the --trace flag.
type Bridge struct {
	logger ports.Logger
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a Bridge writing to logger.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing; spans are reported once their duration is known.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, duration and failure status.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	msg := fmt.Sprintf("span %s took %s", s.Name(), s.EndTime().Sub(s.StartTime()))
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "failed"
		}
		b.logger.Warn(msg + ": " + desc)
		return
	}
	b.logger.Info(msg)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(context.Context) error {
	return nil
}

// InstallBridge registers a global tracer provider that reports spans through
// the bridge. The returned function shuts the provider down.
func InstallBridge(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(logger)))
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
