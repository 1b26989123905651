package reconcile

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Default tracer name for the reconciliation engine.
const defaultTracerName = "floem/reconcile"

// Tracer returns the engine's tracer from the global provider.
// Handy when a caller wants the same tracer the stacks use by default.
func Tracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}

// noopTracer backs stacks with tracing disabled, keeping span call sites
// unconditional.
var noopTracer = noop.NewTracerProvider().Tracer("")

// diffAttributes describes an edit script for span attributes.
func diffAttributes[T any](d *Diff[T]) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("reconcile.removed", len(d.Removed)),
		attribute.Int("reconcile.moved", len(d.Moved)),
		attribute.Int("reconcile.added", len(d.Added)),
		attribute.Bool("reconcile.clear", d.Clear),
	}
}

// startSpan opens a span on tracer, falling back to a no-op span when
// tracing is not configured.
func startSpan(tracer trace.Tracer, name string, attrs []attribute.KeyValue) trace.Span {
	if tracer == nil {
		tracer = noopTracer
	}
	_, span := tracer.Start(context.Background(), name,
		trace.WithAttributes(attrs...))
	return span
}
