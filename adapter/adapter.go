package adapter

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/jonwraymond/finalize/handler"
	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/strategy"
)

// Finalizer is a value whose cleanup may fail.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// FinalizerFunc adapts a function to Finalizer.
type FinalizerFunc func(ctx context.Context) error

// Finalize calls f(ctx).
func (f FinalizerFunc) Finalize(ctx context.Context) error { return f(ctx) }

// Option configures an Adapter.
type Option func(*options)

type options struct {
	panicOnRepeat bool
	cleanup       bool
	primary       strategy.FallibleHandler
	fallback      strategy.Handler
	chain         strategy.Handler
	globals       *registry.Globals
}

// WithPanicOnRepeat controls whether a second Finalize panics with
// ErrFinalizedTwice. Default: true. When false a repeat is a no-op.
func WithPanicOnRepeat(panicOnRepeat bool) Option {
	return func(o *options) { o.panicOnRepeat = panicOnRepeat }
}

// WithPrimary routes errors to h instead of the primary shim.
func WithPrimary(h strategy.FallibleHandler) Option {
	return func(o *options) { o.primary = h }
}

// WithFallback routes primary failures to h instead of the fallback shim.
func WithFallback(h strategy.Handler) Option {
	return func(o *options) { o.fallback = h }
}

// WithChain routes errors to h, ignoring WithPrimary and WithFallback.
func WithChain(h strategy.Handler) Option {
	return func(o *options) { o.chain = h }
}

// WithGlobals makes the default shims resolve global slots from g.
func WithGlobals(g *registry.Globals) Option {
	return func(o *options) { o.globals = g }
}

// WithCleanup runs the finalizer with context.Background() once the adapter
// is garbage collected, unless Finalize ran first. The wrapped value must
// not reference its own adapter or it will never be collected.
func WithCleanup() Option {
	return func(o *options) { o.cleanup = true }
}

// Adapter runs a Finalizer at most once.
//
// Contract:
// - Concurrency: Finalize may be called from any goroutine; exactly one call
//   runs the finalizer.
// - Errors: the finalizer's error is never returned. It is routed through
//   the chain.
type Adapter[T Finalizer] struct {
	*state[T]
	cleanup    runtime.Cleanup
	hasCleanup bool
}

// state is everything a GC cleanup needs. It never points back to the Adapter.
type state[T Finalizer] struct {
	value         T
	chain         strategy.Handler
	panicOnRepeat bool
	ran           atomic.Bool
}

// New wraps value.
func New[T Finalizer](value T, opts ...Option) *Adapter[T] {
	o := options{panicOnRepeat: true}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Adapter[T]{state: &state[T]{
		value:         value,
		chain:         buildChain(o),
		panicOnRepeat: o.panicOnRepeat,
	}}
	if o.cleanup {
		a.cleanup = runtime.AddCleanup(a, func(s *state[T]) {
			s.run(context.Background())
		}, a.state)
		a.hasCleanup = true
	}
	return a
}

func buildChain(o options) strategy.Handler {
	if o.chain != nil {
		return o.chain
	}

	var hopts []handler.Option
	if o.globals != nil {
		hopts = append(hopts, handler.WithGlobals(o.globals))
	}

	primary := o.primary
	if primary == nil {
		primary = handler.NewPrimaryShim(registry.PolicyUseDefault, hopts...)
	}
	fallback := o.fallback
	if fallback == nil {
		fallback = handler.MustFallbackShim(registry.PolicyUseDefault, hopts...)
	}
	return strategy.NewChain(primary, fallback)
}

// Finalize runs the wrapped finalizer if it has not run yet. A repeat call
// panics with ErrFinalizedTwice or does nothing, per WithPanicOnRepeat.
func (a *Adapter[T]) Finalize(ctx context.Context) {
	if a.hasCleanup {
		a.cleanup.Stop()
	}
	if !a.run(ctx) && a.panicOnRepeat {
		panic(ErrFinalizedTwice)
	}
}

// Close finalizes with context.Background(). It always returns nil, since
// errors are routed to the chain.
func (a *Adapter[T]) Close() error {
	a.Finalize(context.Background())
	return nil
}

// Ran reports whether the finalizer has run.
func (a *Adapter[T]) Ran() bool {
	return a.ran.Load()
}

// Value returns the wrapped value.
func (a *Adapter[T]) Value() T {
	return a.value
}

// run marks the state as ran before calling the finalizer, so a finalizer
// that re-enters its own adapter is treated as a repeat.
func (s *state[T]) run(ctx context.Context) bool {
	if !s.ran.CompareAndSwap(false, true) {
		return false
	}
	if err := s.value.Finalize(ctx); err != nil {
		s.chain.Handle(ctx, err)
	}
	return true
}
