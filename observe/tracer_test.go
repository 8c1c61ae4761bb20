package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestHandlerMeta_SpanName verifies span names with and without role.
func TestHandlerMeta_SpanName(t *testing.T) {
	tests := []struct {
		name string
		meta HandlerMeta
		want string
	}{
		{name: "with role", meta: HandlerMeta{Name: "stderr", Role: "primary"}, want: "finalize.handle.primary.stderr"},
		{name: "without role", meta: HandlerMeta{Name: "panic"}, want: "finalize.handle.panic"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.SpanName(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

// TestTracer_SpanAttributes verifies handler attributes are present on the span.
func TestTracer_SpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := &tracerImpl{tracer: tp.Tracer("test")}

	_, span := tr.StartSpan(context.Background(), HandlerMeta{Name: "stderr", Role: "primary", Scope: "global"}, "incident-1")
	tr.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := attrMap(spans[0].Attributes())
	if attrs["handler.name"].AsString() != "stderr" {
		t.Errorf("expected handler.name=stderr, got %v", attrs["handler.name"])
	}
	if attrs["handler.scope"].AsString() != "global" {
		t.Errorf("expected handler.scope=global, got %v", attrs["handler.scope"])
	}
	if attrs["incident.id"].AsString() != "incident-1" {
		t.Errorf("expected incident.id=incident-1, got %v", attrs["incident.id"])
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("expected status Ok, got %v", spans[0].Status().Code)
	}
}

// TestTracer_ErrorStatus verifies a failed dispatch marks the span.
func TestTracer_ErrorStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := &tracerImpl{tracer: tp.Tracer("test")}

	_, span := tr.StartSpan(context.Background(), HandlerMeta{Name: "redis"}, "incident-2")
	tr.EndSpan(span, errors.New("publish failed"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected status Error, got %v", s.Status().Code)
	}
	if !attrMap(s.Attributes())["handler.error"].AsBool() {
		t.Error("expected handler.error=true")
	}
	if len(s.Events()) == 0 {
		t.Error("expected an exception event")
	}
}

// TestTracerContract_NoPanic verifies the noop tracer is safe.
func TestTracerContract_NoPanic(t *testing.T) {
	tracer := newNoopTracer()
	_, span := tracer.StartSpan(context.Background(), HandlerMeta{Name: "noop"}, "")
	tracer.EndSpan(span, nil)
}
