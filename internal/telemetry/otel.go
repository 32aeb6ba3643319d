// Package telemetry wires OpenTelemetry tracing for the HTTP server and worker.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Options selects whether and where spans are exported
type Options struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// Endpoint is host:port, or a full http(s) URL when a path or TLS is needed
	Endpoint string
}

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(context.Context) error

// Setup returns the tracer provider to hand to components and installs the
// W3C propagators. When tracing is off or cannot start it returns a no-op
// provider and logs why. The shutdown func is always safe to call.
func Setup(ctx context.Context, opts Options, logger *zap.Logger) (trace.TracerProvider, ShutdownFunc) {
	if logger == nil {
		logger = zap.NewNop()
	}
	InstallPropagator()
	nothing := func(context.Context) error { return nil }

	switch {
	case !opts.Enabled:
		return noop.NewTracerProvider(), nothing
	case opts.Endpoint == "":
		logger.Warn("otel_enabled_but_endpoint_not_configured")
		return noop.NewTracerProvider(), nothing
	}

	tp, err := newProvider(ctx, opts)
	if err != nil {
		logger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		return noop.NewTracerProvider(), nothing
	}
	otel.SetTracerProvider(tp)

	logger.Info("otel_tracer_initialized",
		zap.String("endpoint", opts.Endpoint),
		zap.String("service", opts.ServiceName),
	)
	return tp, tp.Shutdown
}

// InstallPropagator sets the global trace context and baggage propagator
func InstallPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func newProvider(ctx context.Context, opts Options) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx, exporterOptions(opts.Endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	attrs := []resource.Option{resource.WithAttributes(semconv.ServiceName(opts.ServiceName))}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(opts.ServiceVersion)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	), nil
}

// exporterOptions accepts either a bare host:port, exported to without TLS,
// or a URL whose scheme decides.
func exporterOptions(endpoint string) []otlptracehttp.Option {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	}
	return []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	}
}

// RouterMiddleware traces every request routed by r
func RouterMiddleware(serviceName string, tp trace.TracerProvider) mux.MiddlewareFunc {
	return otelmux.Middleware(serviceName,
		otelmux.WithTracerProvider(tp),
		otelmux.WithPropagators(otel.GetTextMapPropagator()),
	)
}
