package util

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// fallbackTracer names the tracer used when a context carries none.
const fallbackTracer = "dir-archiver"

type tracerKey struct{}

// ContextWithTracer returns a copy of ctx carrying tracer.
func ContextWithTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, tracer)
}

// GetTracerFromContext returns the tracer stored by ContextWithTracer, or one from the
// global provider.
func GetTracerFromContext(ctx context.Context) trace.Tracer {
	if tracer, ok := ctx.Value(tracerKey{}).(trace.Tracer); ok {
		return tracer
	}
	return otel.Tracer(fallbackTracer)
}
