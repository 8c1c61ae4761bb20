package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonwraymond/finalize/handler"
	"github.com/jonwraymond/finalize/health"
	"github.com/jonwraymond/finalize/observe"
	"github.com/jonwraymond/finalize/redispub"
	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/resilience"
	"github.com/jonwraymond/finalize/secret"
	"github.com/jonwraymond/finalize/strategy"
)

// Runtime is a configuration turned into live strategies.
type Runtime struct {
	// Primary and Fallback are the decorated strategies installed by Apply.
	Primary  strategy.FallibleHandler
	Fallback strategy.Handler

	// Chain routes through the shims: local slots, then global slots, then
	// the configured terminal policies.
	Chain        *strategy.Chain
	PrimaryShim  *handler.PrimaryShim
	FallbackShim *handler.FallbackShim
	Breaker      *resilience.CircuitBreaker
	Publisher    *redispub.Publisher
	Observer     observe.Observer
	Globals      *registry.Globals

	primaryPolicy  registry.Policy
	fallbackPolicy registry.Policy
	closers        []io.Closer
	secrets        *secret.Resolver
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	secrets *secret.Resolver
}

// WithSecrets sets the resolver for secretref values in redis settings.
// The default resolves "env" and "file" references.
func WithSecrets(r *secret.Resolver) BuildOption {
	return func(o *buildOptions) {
		o.secrets = r
	}
}

// Build creates every strategy the configuration describes, filling zero
// fields of cfg with defaults. Nothing is installed; see Apply.
func Build(ctx context.Context, cfg *Config, g *registry.Globals, opts ...BuildOption) (*Runtime, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions{secrets: secret.NewResolver()}
	for _, opt := range opts {
		opt(&o)
	}
	if g == nil {
		g = registry.Process()
	}

	rt := &Runtime{Globals: g, secrets: o.secrets}
	built := false
	defer func() {
		if !built {
			_ = rt.Close(ctx)
		}
	}()

	var err error
	rt.Observer, err = observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, fmt.Errorf("config: observe: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(rt.Observer)
	if err != nil {
		return nil, err
	}

	primary, err := rt.buildPrimary(ctx, cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("config: primary: %w", err)
	}
	primary = rt.decorate(cfg.Resilience, primary)
	rt.Primary = mw.Wrap(primary, observe.HandlerMeta{Name: cfg.Primary.Kind, Role: "primary", Scope: "global"})

	fallback, err := rt.buildFallback(cfg.Fallback)
	if err != nil {
		return nil, fmt.Errorf("config: fallback: %w", err)
	}
	rt.Fallback = mw.WrapHandler(fallback, observe.HandlerMeta{Name: cfg.Fallback.Kind, Role: "fallback", Scope: "global"})

	rt.primaryPolicy, _ = registry.ParsePolicy(cfg.Shim.PrimaryOnUninit)
	rt.fallbackPolicy, _ = registry.ParsePolicy(cfg.Shim.FallbackOnUninit)
	rt.PrimaryShim = handler.NewPrimaryShim(rt.primaryPolicy, handler.WithGlobals(g))
	rt.FallbackShim, err = handler.NewFallbackShim(rt.fallbackPolicy, handler.WithGlobals(g))
	if err != nil {
		return nil, err
	}
	rt.Chain = strategy.NewChain(rt.PrimaryShim, rt.FallbackShim)
	built = true
	return rt, nil
}

// Apply builds cfg and installs the result into the global slots of g
// (registry.Process() when nil).
func Apply(ctx context.Context, cfg *Config, g *registry.Globals, opts ...BuildOption) (*Runtime, error) {
	rt, err := Build(ctx, cfg, g, opts...)
	if err != nil {
		return nil, err
	}
	rt.Globals.Primary.Install(rt.Primary)
	rt.Globals.Fallback.Install(rt.Fallback)
	return rt, nil
}

func (rt *Runtime) buildPrimary(ctx context.Context, s *StrategyConfig) (strategy.FallibleHandler, error) {
	switch s.Kind {
	case KindStderr, KindStdout, KindWrite:
		return rt.buildWrite(s)
	case KindRedis:
		rc, err := rt.resolveRedis(ctx, s.Redis)
		if err != nil {
			return nil, err
		}
		pub, err := redispub.Dial(ctx, rc)
		if err != nil {
			return nil, err
		}
		rt.Publisher = pub
		rt.closers = append(rt.closers, pub)
		return pub, nil
	}
	h, err := rt.buildInfallible(s)
	if err != nil {
		return nil, err
	}
	return strategy.Fallible(h), nil
}

func (rt *Runtime) resolveRedis(ctx context.Context, c redispub.Config) (redispub.Config, error) {
	var err error
	if c.URL, err = rt.secrets.Resolve(ctx, c.URL); err != nil {
		return c, fmt.Errorf("redis url: %w", err)
	}
	if c.Password, err = rt.secrets.Resolve(ctx, c.Password); err != nil {
		return c, fmt.Errorf("redis password: %w", err)
	}
	return c, nil
}

func (rt *Runtime) buildFallback(s *StrategyConfig) (strategy.Handler, error) {
	switch s.Kind {
	case KindStderr, KindStdout, KindWrite:
		w, err := rt.buildWrite(s)
		if err != nil {
			return nil, err
		}
		return strategy.HandlerFunc(func(ctx context.Context, err error) {
			_ = w.TryHandle(ctx, err)
		}), nil
	case KindRedis:
		return nil, ErrFallibleFallback
	}
	return rt.buildInfallible(s)
}

func (rt *Runtime) buildInfallible(s *StrategyConfig) (strategy.Handler, error) {
	switch s.Kind {
	case KindPanic:
		return strategy.NewPanic(s.Message), nil
	case KindNoop:
		return strategy.Noop{}, nil
	case KindExit:
		if s.Code == 0 {
			return strategy.DefaultExit(), nil
		}
		return strategy.NewExit(s.Code), nil
	case KindAbort:
		return &strategy.Abort{}, nil
	case KindLog:
		level, err := parseLevel(s.Level)
		if err != nil {
			return nil, err
		}
		opts := []strategy.LogOption{strategy.WithLevel(level)}
		if s.Message != "" {
			opts = append(opts, strategy.WithMessage(s.Message))
		}
		if s.Color {
			return strategy.NewConsoleLog(os.Stderr, false, opts...), nil
		}
		return strategy.NewLog(slog.Default(), opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

func (rt *Runtime) buildWrite(s *StrategyConfig) (*strategy.Write, error) {
	var opts []strategy.WriteOption
	if s.Prelude != nil {
		opts = append(opts, strategy.WithPrelude(*s.Prelude))
	}
	if s.Newline != nil {
		opts = append(opts, strategy.WithNewline(*s.Newline))
	}

	switch s.Kind {
	case KindStdout:
		return strategy.NewWrite(os.Stdout, opts...), nil
	case KindWrite:
		if s.Path == "" {
			return strategy.NewWrite(os.Stderr, opts...), nil
		}
		f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", s.Path, err)
		}
		rt.closers = append(rt.closers, f)
		return strategy.NewWrite(f, opts...), nil
	default:
		return strategy.NewWrite(os.Stderr, opts...), nil
	}
}

func (rt *Runtime) decorate(c ResilienceConfig, h strategy.FallibleHandler) strategy.FallibleHandler {
	var opts []resilience.StackOption
	if c.RateLimit.Rate > 0 {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  c.RateLimit.Rate,
			Burst: c.RateLimit.Burst,
		})))
	}
	if c.MaxConcurrent > 0 {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: c.MaxConcurrent,
		})))
	}
	if c.CircuitBreaker.MaxFailures > 0 {
		rt.Breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  c.CircuitBreaker.MaxFailures,
			ResetTimeout: c.CircuitBreaker.ResetTimeout,
		})
		opts = append(opts, resilience.WithCircuitBreaker(rt.Breaker))
	}
	if c.Retry.MaxAttempts > 1 {
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  c.Retry.MaxAttempts,
			InitialDelay: c.Retry.InitialDelay,
			MaxDelay:     c.Retry.MaxDelay,
			Strategy:     resilience.ParseBackoff(c.Retry.Backoff),
			Jitter:       c.Retry.Jitter,
		})))
	}
	if c.Timeout > 0 {
		opts = append(opts, resilience.WithTimeout(c.Timeout))
	}
	return resilience.NewStack(opts...).Wrap(h)
}

// RegisterHealth adds checkers for everything the runtime built.
func (rt *Runtime) RegisterHealth(agg *health.Aggregator) {
	agg.Register("registry", health.NewRegistryChecker(health.RegistryCheckerConfig{
		Globals:        rt.Globals,
		PrimaryPolicy:  rt.primaryPolicy,
		FallbackPolicy: rt.fallbackPolicy,
		Flaggers: map[string]health.Flagger{
			"primary_shim":  rt.PrimaryShim,
			"fallback_shim": rt.FallbackShim,
		},
	}))
	if rt.Publisher != nil {
		agg.Register("redis", health.NewPingChecker("redis", rt.Publisher.Ping))
	}
	if rt.Breaker != nil {
		agg.Register("circuit_breaker", health.NewBreakerChecker("circuit_breaker", rt.Breaker))
	}
}

// Close releases files, connections and telemetry providers.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for _, c := range rt.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	if rt.Observer != nil {
		if err := rt.Observer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
