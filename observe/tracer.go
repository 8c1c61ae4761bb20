package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// HandlerMeta describes an instrumented strategy.
type HandlerMeta struct {
	Name  string // Strategy name, e.g. "stderr" (required)
	Role  string // "primary" or "fallback" (optional)
	Scope string // "global" or "local" (optional)
}

// SpanName returns the deterministic span name for this strategy.
// Format: finalize.handle.<role>.<name> or finalize.handle.<name>
func (m HandlerMeta) SpanName() string {
	if m.Role != "" {
		return "finalize.handle." + m.Role + "." + m.Name
	}
	return "finalize.handle." + m.Name
}

func (m HandlerMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("handler.name", m.Name),
	}
	if m.Role != "" {
		attrs = append(attrs, attribute.String("handler.role", m.Role))
	}
	if m.Scope != "" {
		attrs = append(attrs, attribute.String("handler.scope", m.Scope))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with dispatch span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one dispatch of a finalizer error.
	StartSpan(ctx context.Context, meta HandlerMeta, incident string) (context.Context, trace.Span)

	// EndSpan ends the span, recording any strategy failure.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with handler metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta HandlerMeta, incident string) (context.Context, trace.Span) {
	attrs := append(meta.attributes(),
		attribute.String("incident.id", incident),
		attribute.Bool("handler.error", false),
	)

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("handler.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta HandlerMeta, incident string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
