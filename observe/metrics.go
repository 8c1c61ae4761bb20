package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records dispatch metrics for strategies.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordDispatch records one finalizer error handed to a strategy, how long
	// the strategy took, and whether it failed.
	RecordDispatch(ctx context.Context, meta HandlerMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"finalize.handle.total",
		metric.WithDescription("Total number of finalizer errors dispatched to a strategy"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"finalize.handle.errors",
		metric.WithDescription("Total number of strategies that failed to handle a finalizer error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"finalize.handle.duration_ms",
		metric.WithDescription("Strategy dispatch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordDispatch records metrics for one dispatch.
func (m *metricsImpl) RecordDispatch(ctx context.Context, meta HandlerMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (m *noopMetrics) RecordDispatch(ctx context.Context, meta HandlerMeta, duration time.Duration, err error) {
}

