package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	ErrInvalidConfig         = errors.New("invalid telemetry configuration")
	ErrMissingServiceName    = errors.New("service name is required")
	ErrMissingServiceVersion = errors.New("service version is required")
	ErrInvalidSampleRate     = errors.New("sample rate must be between 0.0 and 1.0")
)

const serviceNamespace = "medicare"

// Config selects which signals are exported. Without an OTLPEndpoint the
// providers are still installed, so spans and instruments work, but nothing
// leaves the process.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	EnableTracing  bool
	EnableMetrics  bool
	SampleRate     float64
}

func (c *Config) Validate() error {
	switch {
	case c.ServiceName == "":
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingServiceName)
	case c.ServiceVersion == "":
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingServiceVersion)
	case c.SampleRate < 0.0 || c.SampleRate > 1.0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidSampleRate)
	}
	return nil
}

// Telemetry owns the global providers installed by Initialize.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	traceExporter  sdktrace.SpanExporter
	metricReader   sdkmetric.Reader
	shutdowns      []func(context.Context) error
}

type Option func(*options)

type options struct {
	traceExporter  sdktrace.SpanExporter
	metricExporter sdkmetric.Exporter
}

// WithTraceExporter overrides the OTLP span exporter.
func WithTraceExporter(exporter sdktrace.SpanExporter) Option {
	return func(o *options) { o.traceExporter = exporter }
}

// WithMetricExporter overrides the OTLP metric exporter.
func WithMetricExporter(exporter sdkmetric.Exporter) Option {
	return func(o *options) { o.metricExporter = exporter }
}

func Initialize(ctx context.Context, cfg Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.ServiceNamespace(serviceNamespace),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tel := &Telemetry{}

	if cfg.EnableTracing {
		if err := tel.startTracing(ctx, res, cfg, o.traceExporter); err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", errors.Join(err, tel.Shutdown(ctx)))
		}
	}

	if cfg.EnableMetrics {
		if err := tel.startMetrics(ctx, res, cfg, o.metricExporter); err != nil {
			return nil, fmt.Errorf("initialize metrics: %w", errors.Join(err, tel.Shutdown(ctx)))
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tel, nil
}

func (t *Telemetry) startTracing(ctx context.Context, res *resource.Resource, cfg Config, exporter sdktrace.SpanExporter) error {
	if exporter == nil && cfg.OTLPEndpoint != "" {
		var err error
		// the collector sidecar speaks plaintext gRPC
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(cfg.SampleRate)),
	}
	if exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	t.tracerProvider = sdktrace.NewTracerProvider(providerOpts...)
	t.traceExporter = exporter
	t.shutdowns = append(t.shutdowns, t.tracerProvider.Shutdown)
	otel.SetTracerProvider(t.tracerProvider)
	return nil
}

func (t *Telemetry) startMetrics(ctx context.Context, res *resource.Resource, cfg Config, exporter sdkmetric.Exporter) error {
	if exporter == nil && cfg.OTLPEndpoint != "" {
		var err error
		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("create metric exporter: %w", err)
		}
	}

	// a manual reader that is never collected keeps instruments cheap and local
	var reader sdkmetric.Reader = sdkmetric.NewManualReader()
	if exporter != nil {
		reader = sdkmetric.NewPeriodicReader(exporter)
	}

	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	t.metricReader = reader
	t.shutdowns = append(t.shutdowns, t.meterProvider.Shutdown)
	otel.SetMeterProvider(t.meterProvider)
	return nil
}

func createSampler(sampleRate float64) sdktrace.Sampler {
	switch {
	case sampleRate <= 0.0:
		return sdktrace.NeverSample()
	case sampleRate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))
	}
}

// Shutdown flushes and stops every provider Initialize started. Providers
// shut down their own exporters and readers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdowns) - 1; i >= 0; i-- {
		if err := t.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdowns = nil
	return errors.Join(errs...)
}

func (t *Telemetry) TracerProvider() *sdktrace.TracerProvider {
	return t.tracerProvider
}

func (t *Telemetry) MeterProvider() *sdkmetric.MeterProvider {
	return t.meterProvider
}
