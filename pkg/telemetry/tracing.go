package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/duration"
)

// TracingOptions configures the OTLP exporter.
type TracingOptions struct {
	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// Empty disables tracing.
	Endpoint string

	// ServiceName is the service name for traces (default: "amlreport").
	ServiceName string

	// Insecure uses a plaintext connection.
	Insecure bool

	// Headers contains additional headers for the exporter.
	Headers map[string]string

	// ConnectTimeout bounds exporter setup (default: 10s).
	ConnectTimeout time.Duration

	// ShutdownTimeout bounds span flushing on Shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// Tracer starts pipeline spans. The zero value is not usable; a nil
// *Tracer starts no-op spans.
type Tracer struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
	timeout  time.Duration
}

const instrumentation = defaults.ToolName + "/pipeline"

// NewTracer returns a Tracer exporting over OTLP gRPC, or a no-op Tracer
// when opts.Endpoint is empty.
func NewTracer(opts TracingOptions) (*Tracer, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = duration.TelemetryConnect
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.TelemetryShutdown
	}
	if opts.Endpoint == "" {
		return FromProvider(noop.NewTracerProvider()), nil
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "report"),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return &Tracer{
		tracer:   tp.Tracer(instrumentation),
		shutdown: tp.Shutdown,
		timeout:  opts.ShutdownTimeout,
	}, nil
}

// FromProvider wraps an existing provider. Shutdown is left to its owner.
func FromProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{
		tracer:  tp.Tracer(instrumentation),
		timeout: duration.TelemetryShutdown,
	}
}

// Start opens a span named name under ctx.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t == nil {
		return noop.NewTracerProvider().Tracer(instrumentation).Start(ctx, name)
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End closes span, recording err when non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes pending spans.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.shutdown(ctx)
}
