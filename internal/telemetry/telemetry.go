// Package telemetry wires OpenTelemetry tracing for pipeline runs.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "trendsentinel"

// Init installs a stdout trace exporter when enabled. The returned
// function flushes and shuts the provider down.
func Init(enabled bool) (func(context.Context) error, error) {
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the tracer pipeline stages record spans on.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
