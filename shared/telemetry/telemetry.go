// Package telemetry configures OpenTelemetry tracing for the portal.
package telemetry

import (
	"context"
	"os"

	"github.com/microsmart/portal/shared/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Setup installs a global tracer provider exporting over OTLP gRPC when
// OTEL_EXPORTER_OTLP_ENDPOINT is set. The returned func flushes and stops it.
func Setup(serviceName string) func(context.Context) error {
	noop := func(context.Context) error { return nil }

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		logger.Log.Debug("tracing disabled, no OTLP endpoint")
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(context.Background(), opts...)
	if err != nil {
		logger.Log.Error("otel exporter", "error", err)
		return noop
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		logger.Log.Warn("otel resource", "error", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	// backend sees the same trace id as the inbound request
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Log.Info("tracing enabled", "endpoint", endpoint)
	return provider.Shutdown
}
