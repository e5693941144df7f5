// Package observability configures OpenTelemetry tracing for the resolver
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	customErrors "github.com/tuannvm/enclave-resolver/internal/common/errors"
	"github.com/tuannvm/enclave-resolver/internal/common/logging"
)

// ServiceName is reported as service.name on every span
const ServiceName = "enclave-resolver"

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// TracingConfig selects the trace exporter
type TracingConfig struct {
	Endpoint       string `json:"endpoint,omitempty"` // OTLP/HTTP traces URL; empty disables tracing
	ServiceVersion string `json:"-"`
}

// Enabled reports whether an exporter endpoint is configured
func (c TracingConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Setup installs a global tracer provider exporting over OTLP/HTTP.
// When no endpoint is configured the global no-op provider is left in place.
func Setup(ctx context.Context, cfg TracingConfig, logger *logging.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled() {
		logger.Debug("Tracing disabled")
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noopShutdown, customErrors.WrapConfigError(err, "tracing_exporter", "failed to create OTLP trace exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(cfg)),
	)
	otel.SetTracerProvider(tp)

	logger.InfoKV("Tracing provider initialized", "type", "otlp-http", "endpoint", cfg.Endpoint)
	return tp.Shutdown, nil
}

func newResource(cfg TracingConfig) *resource.Resource {
	attrs := []attribute.KeyValue{attribute.String("service.name", ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	return resource.NewSchemaless(attrs...)
}
