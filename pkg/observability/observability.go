package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/milan604/restkit/pkg/config"
	"github.com/milan604/restkit/pkg/logger"
)

// InstrumentationName is the tracer name used by the restkit transport.
const InstrumentationName = "github.com/milan604/restkit"

// ObservabilityIface defines the interface for observability operations
type ObservabilityIface interface {
	// StartSpan creates a new span for tracing
	StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)

	// Shutdown flushes pending spans and stops the exporter
	Shutdown(ctx context.Context) error

	// TracerProvider returns the provider to hand to the transport
	TracerProvider() trace.TracerProvider
}

// Observability owns the OpenTelemetry tracer provider of a process that makes API calls.
type Observability struct {
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	log            logger.LogManager
}

// New builds a tracer provider exporting over OTLP/HTTP and installs it
// globally together with the W3C trace-context propagator.
//
// Keys: observability.service_name, observability.service_version,
// observability.otlp_endpoint (default http://localhost:4318),
// observability.sample_ratio (default 1).
func New(log logger.LogManager, cfg *config.Config) (ObservabilityIface, error) {
	serviceName := cfg.GetStringD("observability.service_name", "restkit-client")
	serviceVersion := cfg.GetStringD("observability.service_version", "dev")
	endpoint := cfg.GetStringD("observability.otlp_endpoint", "http://localhost:4318")

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	ratio := 1.0
	if cfg.IsSet("observability.sample_ratio") {
		ratio = cfg.GetFloat64("observability.sample_ratio")
	}

	obs, err := NewWithExporter(log, serviceName, serviceVersion, exporter, sdktrace.TraceIDRatioBased(ratio))
	if err != nil {
		return nil, err
	}
	log.InfoF("Observability initialized: service=%s, version=%s, endpoint=%s", serviceName, serviceVersion, endpoint)
	return obs, nil
}

// NewWithExporter is New with a caller-provided exporter, e.g. an in-memory one in tests.
func NewWithExporter(log logger.LogManager, serviceName, serviceVersion string, exporter sdktrace.SpanExporter, sampler sdktrace.Sampler) (*Observability, error) {
	if log == nil {
		log = logger.NewNop()
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if sampler == nil {
		sampler = sdktrace.AlwaysSample()
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(serviceVersion)),
		log:            log,
	}, nil
}

// StartSpan creates a new span for tracing
func (o *Observability) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, opts...)
}

// TracerProvider returns the SDK tracer provider.
func (o *Observability) TracerProvider() trace.TracerProvider {
	return o.tracerProvider
}

// Shutdown gracefully shuts down the observability system
func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := o.tracerProvider.Shutdown(ctx); err != nil {
		o.log.ErrorF("failed to shutdown tracer provider: %v", err)
		return err
	}

	o.log.InfoF("Observability shutdown completed")
	return nil
}
