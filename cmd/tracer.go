package cmd

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	appName = "dir-archiver"
)

// getTracer get a global tracer for the application, which incorporates both the name of the application
// and the command that is being run.
func getTracer(cmd string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(fmt.Sprintf("%s/%s", appName, cmd))
}

// flushTracer exports any buffered spans; it does nothing without an SDK provider.
func flushTracer(ctx context.Context) {
	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if !ok {
		return
	}
	_ = tp.ForceFlush(ctx)
	_ = tp.Shutdown(ctx)
}
