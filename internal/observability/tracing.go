package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer returns a tracer for the named component. When tracing is disabled
// the tracer is a no-op and spans cost nothing.
func Tracer(enabled bool, name string) trace.Tracer {
	if !enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}
