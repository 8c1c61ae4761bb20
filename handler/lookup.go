package handler

import (
	"context"

	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/strategy"
)

// Strategies are copied out of their slot before dispatch, so no registry
// lock or borrow is held while a strategy runs.

func lookupPrimary(ctx context.Context, scope registry.Scope, g *registry.Globals, orDefault bool) (strategy.FallibleHandler, error) {
	if scope == registry.Global {
		if orDefault {
			return g.Primary.GetOrDefault(), nil
		}
		return g.Primary.Get()
	}

	l := registry.LocalsFrom(ctx)
	if l == nil {
		if orDefault {
			return registry.DefaultPrimary(), nil
		}
		return nil, &registry.UninitializedError{Scope: registry.Local, Role: registry.Primary}
	}
	if orDefault {
		return l.Primary.GetOrDefault(), nil
	}
	return l.Primary.Get()
}

func lookupFallback(ctx context.Context, scope registry.Scope, g *registry.Globals, orDefault bool) (strategy.Handler, error) {
	if scope == registry.Global {
		if orDefault {
			return g.Fallback.GetOrDefault(), nil
		}
		return g.Fallback.Get()
	}

	l := registry.LocalsFrom(ctx)
	if l == nil {
		if orDefault {
			return registry.DefaultFallback(), nil
		}
		return nil, &registry.UninitializedError{Scope: registry.Local, Role: registry.Fallback}
	}
	if orDefault {
		return l.Fallback.GetOrDefault(), nil
	}
	return l.Fallback.Get()
}
