package finalize

import (
	"context"

	"github.com/jonwraymond/finalize/adapter"
	"github.com/jonwraymond/finalize/handler"
	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/strategy"
)

// InstallPrimary sets the process-wide primary strategy.
func InstallPrimary(h strategy.FallibleHandler) {
	registry.Process().Primary.Install(h)
}

// InstallPrimaryHandler sets an infallible process-wide primary strategy.
func InstallPrimaryHandler(h strategy.Handler) {
	InstallPrimary(strategy.Fallible(h))
}

// InstallPrimaryFunc sets a function as the process-wide primary strategy.
func InstallPrimaryFunc(fn func(ctx context.Context, err error) error) {
	InstallPrimary(strategy.FallibleFunc(fn))
}

// ReplacePrimary sets the process-wide primary strategy and returns the old one.
func ReplacePrimary(h strategy.FallibleHandler) (strategy.FallibleHandler, bool) {
	return registry.Process().Primary.Replace(h)
}

// TakePrimary removes and returns the process-wide primary strategy.
func TakePrimary() (strategy.FallibleHandler, bool) {
	return registry.Process().Primary.Take()
}

// UninstallPrimary removes the process-wide primary strategy.
func UninstallPrimary() {
	registry.Process().Primary.Uninstall()
}

// InstallFallback sets the process-wide fallback strategy.
func InstallFallback(h strategy.Handler) {
	registry.Process().Fallback.Install(h)
}

// InstallFallbackFunc sets a function as the process-wide fallback strategy.
func InstallFallbackFunc(fn func(ctx context.Context, err error)) {
	InstallFallback(strategy.HandlerFunc(fn))
}

// ReplaceFallback sets the process-wide fallback strategy and returns the old one.
func ReplaceFallback(h strategy.Handler) (strategy.Handler, bool) {
	return registry.Process().Fallback.Replace(h)
}

// TakeFallback removes and returns the process-wide fallback strategy.
func TakeFallback() (strategy.Handler, bool) {
	return registry.Process().Fallback.Take()
}

// UninstallFallback removes the process-wide fallback strategy.
func UninstallFallback() {
	registry.Process().Fallback.Uninstall()
}

// WithLocals returns a child of ctx that can hold local strategies.
func WithLocals(ctx context.Context) context.Context {
	return registry.WithLocals(ctx)
}

// InstallLocalPrimary sets the primary strategy for ctx. It panics if ctx
// was not derived from WithLocals.
func InstallLocalPrimary(ctx context.Context, h strategy.FallibleHandler) {
	registry.MustLocalsFrom(ctx).Primary.Install(h)
}

// InstallLocalFallback sets the fallback strategy for ctx. It panics if ctx
// was not derived from WithLocals.
func InstallLocalFallback(ctx context.Context, h strategy.Handler) {
	registry.MustLocalsFrom(ctx).Fallback.Install(h)
}

// UninstallLocalPrimary removes the primary strategy for ctx, if any.
func UninstallLocalPrimary(ctx context.Context) {
	if l := registry.LocalsFrom(ctx); l != nil {
		l.Primary.Uninstall()
	}
}

// UninstallLocalFallback removes the fallback strategy for ctx, if any.
func UninstallLocalFallback(ctx context.Context) {
	if l := registry.LocalsFrom(ctx); l != nil {
		l.Fallback.Uninstall()
	}
}

// ScopePrimary overrides the primary strategy for ctx until the guard is
// released. It panics if a primary guard is already live for ctx.
func ScopePrimary(ctx context.Context, h strategy.FallibleHandler) *registry.Guard {
	return registry.MustLocalsFrom(ctx).Primary.Scope(h)
}

// ScopeFallback overrides the fallback strategy for ctx until the guard is
// released. It panics if a fallback guard is already live for ctx.
func ScopeFallback(ctx context.Context, h strategy.Handler) *registry.Guard {
	return registry.MustLocalsFrom(ctx).Fallback.Scope(h)
}

// Handle routes err through the default chain, as an adapter would.
func Handle(ctx context.Context, err error) {
	handler.Default().Handle(ctx, err)
}

// Adapt wraps value so that its Finalize runs at most once and its error is
// routed to the resolved strategies.
func Adapt[T adapter.Finalizer](value T, opts ...adapter.Option) *adapter.Adapter[T] {
	return adapter.New(value, opts...)
}
