package observe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/finalize/strategy"
)

// Middleware wraps strategies with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: wrapped strategies are as safe as the strategies they wrap.
//   - Context: the dispatch span is carried in the context given to the
//     wrapped strategy.
//   - Errors: failures from the wrapped strategy are recorded and returned
//     unchanged. Panics are recorded and re-raised.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap instruments a fallible strategy.
func (m *Middleware) Wrap(h strategy.FallibleHandler, meta HandlerMeta) strategy.FallibleHandler {
	return strategy.FallibleFunc(func(ctx context.Context, err error) (ferr error) {
		d := dispatch{meta: meta, incident: uuid.NewString(), cause: err, start: time.Now()}
		ctx, d.span = m.tracer.StartSpan(ctx, meta, d.incident)

		defer func() {
			if r := recover(); r != nil {
				m.finish(ctx, d, fmt.Errorf("%w: %v", ErrStrategyPanicked, r))
				panic(r)
			}
			m.finish(ctx, d, ferr)
		}()

		return h.TryHandle(ctx, err)
	})
}

// WrapHandler instruments an infallible strategy.
func (m *Middleware) WrapHandler(h strategy.Handler, meta HandlerMeta) strategy.Handler {
	wrapped := m.Wrap(strategy.Fallible(h), meta)
	return strategy.HandlerFunc(func(ctx context.Context, err error) {
		_ = wrapped.TryHandle(ctx, err)
	})
}

type dispatch struct {
	meta     HandlerMeta
	incident string
	cause    error
	start    time.Time
	span     trace.Span
}

func (m *Middleware) finish(ctx context.Context, d dispatch, ferr error) {
	duration := time.Since(d.start)

	m.tracer.EndSpan(d.span, ferr)
	m.metrics.RecordDispatch(ctx, d.meta, duration, ferr)

	fields := []Field{
		{Key: "incident_id", Value: d.incident},
		{Key: "finalizer_error", Value: errorString(d.cause)},
		{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
	}

	logger := m.logger.WithHandler(d.meta)
	if ferr != nil {
		fields = append(fields, Field{Key: "error", Value: ferr.Error()})
		logger.Error(ctx, "strategy failed to handle finalizer error", fields...)
		return
	}
	logger.Info(ctx, "finalizer error handled", fields...)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// NoopMiddleware returns a Middleware that records nothing.
func NoopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, &noopLogger{})
}

// LogHandler returns a strategy that writes each finalizer error to logger
// at error level.
func LogHandler(logger Logger, meta HandlerMeta) strategy.Handler {
	l := logger.WithHandler(meta)
	return strategy.HandlerFunc(func(ctx context.Context, err error) {
		l.Error(ctx, "finalizer failed", Field{Key: "error", Value: errorString(err)})
	})
}
