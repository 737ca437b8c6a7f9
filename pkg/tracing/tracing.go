// Package tracing provides OpenTelemetry spans around editing commands and
// derivations.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of netbuilder spans.
const TracerName = "github.com/dd0wney/cluso-netbuilder"

// Config configures the OpenTelemetry tracing.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// If empty, spans are created but never exported.
	Endpoint string

	// SampleRate is the trace sampling rate (0.0 to 1.0)
	SampleRate float64
}

// Provider wraps the OpenTelemetry tracer provider.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// Init sets up tracing. Without an endpoint it returns a provider backed by
// the global (no-op unless configured elsewhere) tracer.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		return &Provider{tracer: otel.Tracer(TracerName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// NewProvider wraps an existing SDK provider; tests use it with an in-memory
// span recorder.
func NewProvider(tp *sdktrace.TracerProvider) *Provider {
	return &Provider{provider: tp, tracer: tp.Tracer(TracerName)}
}

// Sampler maps a rate onto a parent-based sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Shutdown flushes and stops the exporter, if any.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// Tracer returns the underlying tracer; a nil Provider yields the global one.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return otel.Tracer(TracerName)
	}
	return p.tracer
}

// StartCommandSpan starts a span for one editing command.
func (p *Provider) StartCommandSpan(ctx context.Context, session, command string) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, "command."+command,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("netbuilder.session", session),
			attribute.String("netbuilder.command", command),
		),
	)
}

// StartDerivationSpan starts a span for recomputing a report.
func (p *Provider) StartDerivationSpan(ctx context.Context, nodes, links int) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, "derive",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("netbuilder.nodes", nodes),
			attribute.Int("netbuilder.links", links),
		),
	)
}

// RecordDerivation annotates a derivation span with its outcome.
func RecordDerivation(span trace.Span, size string, unclassified int) {
	span.SetAttributes(
		attribute.String("netbuilder.parameter_graph_size", size),
		attribute.Int("netbuilder.unclassified_nodes", unclassified),
	)
}

// RecordRevision annotates a command span with the revision it produced.
func RecordRevision(span trace.Span, revision uint64) {
	span.SetAttributes(attribute.Int64("netbuilder.revision", int64(revision)))
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
