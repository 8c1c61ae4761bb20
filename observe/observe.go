package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/finalize/observe/exporters"
)

// Config selects how strategy dispatches are reported. Every subsystem is
// off by default, in which case the Observer hands out noops and wrapping a
// strategy costs one incident id per finalizer error.
type Config struct {
	// ServiceName is the otel service.name resource and the tracer and meter
	// name. Required.
	ServiceName string `yaml:"service_name"`
	Version     string `yaml:"version"`

	// RegisterGlobal also installs the tracer and meter providers as the otel
	// globals. Leave it off when the application owns those.
	RegisterGlobal bool `yaml:"register_global"`

	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// TracingConfig controls one span per dispatch.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is otlp, jaeger, stdout or none.
	Exporter string `yaml:"exporter"`
	// SamplePct is the fraction of dispatches traced, from 0 to 1.
	SamplePct float64 `yaml:"sample_pct"`
}

// MetricsConfig controls the finalize.handle.* instruments.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is otlp, prometheus, stdout or none.
	Exporter string `yaml:"exporter"`
}

// LoggingConfig controls the JSON line written per dispatch.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	// Output is stderr (the default) or stdout.
	Output string `yaml:"output"`
}

// Validate reports the first invalid setting. Disabled subsystems are not
// checked.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if t := c.Tracing; t.Enabled {
		if !slices.Contains(ValidTracingExporters, t.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
		}
		if t.SamplePct < MinSamplePct || t.SamplePct > MaxSamplePct {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, t.SamplePct)
		}
	}
	if m := c.Metrics; m.Enabled && !slices.Contains(ValidMetricsExporters, m.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
	}
	if l := c.Logging; l.Enabled {
		if !slices.Contains(ValidLogLevels, l.Level) {
			return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
		}
		if _, err := logOutput(l.Output); err != nil {
			return err
		}
	}
	return nil
}

func logOutput(name string) (io.Writer, error) {
	switch name {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidLogOutput, name)
}

// Observer provides the telemetry primitives a Middleware records with.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown flushes every provider and joins their errors.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Logger() Logger
	Shutdown(ctx context.Context) error
}

// Logger is the structured logger dispatches are reported to.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging is best-effort and must not panic.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	WithHandler(meta HandlerMeta) Logger
}

// Field is one key/value pair of a log line.
type Field struct {
	Key   string
	Value any
}

type observer struct {
	tracer         trace.Tracer
	meter          metric.Meter
	logger         Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewObserver validates cfg and builds the enabled subsystems. On error,
// providers already built are shut down.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	obs := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer(cfg.ServiceName),
		meter:  noop.NewMeterProvider().Meter(cfg.ServiceName),
		logger: &noopLogger{},
	}
	if !cfg.Tracing.Enabled && !cfg.Metrics.Enabled && !cfg.Logging.Enabled {
		return obs, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	if cfg.Tracing.Enabled {
		exp, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter)
		if err != nil {
			return nil, fmt.Errorf("observe: tracing: %w", err)
		}
		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler(cfg.Tracing.SamplePct)),
		}
		if exp != nil {
			opts = append(opts, sdktrace.WithBatcher(exp))
		}
		obs.tracerProvider = sdktrace.NewTracerProvider(opts...)
		obs.tracer = obs.tracerProvider.Tracer(cfg.ServiceName)
	}

	if cfg.Metrics.Enabled {
		reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter)
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, fmt.Errorf("observe: metrics: %w", err)
		}
		opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
		if reader != nil {
			opts = append(opts, sdkmetric.WithReader(reader))
		}
		obs.meterProvider = sdkmetric.NewMeterProvider(opts...)
		obs.meter = obs.meterProvider.Meter(cfg.ServiceName)
	}

	if cfg.Logging.Enabled {
		w, _ := logOutput(cfg.Logging.Output)
		obs.logger = NewLoggerWithWriter(cfg.Logging.Level, w)
	}

	if cfg.RegisterGlobal {
		if obs.tracerProvider != nil {
			otel.SetTracerProvider(obs.tracerProvider)
		}
		if obs.meterProvider != nil {
			otel.SetMeterProvider(obs.meterProvider)
		}
	}
	return obs, nil
}

// sampler maps a fraction of dispatches to trace onto a sampler.
func sampler(pct float64) sdktrace.Sampler {
	switch {
	case pct >= MaxSamplePct:
		return sdktrace.AlwaysSample()
	case pct <= MinSamplePct:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }

func (o *observer) Meter() metric.Meter { return o.meter }

func (o *observer) Logger() Logger { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

type noopLogger struct{}

func (l *noopLogger) Info(context.Context, string, ...Field)  {}
func (l *noopLogger) Warn(context.Context, string, ...Field)  {}
func (l *noopLogger) Error(context.Context, string, ...Field) {}
func (l *noopLogger) Debug(context.Context, string, ...Field) {}
func (l *noopLogger) WithHandler(HandlerMeta) Logger          { return l }
