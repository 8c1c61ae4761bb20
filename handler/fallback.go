package handler

import (
	"context"
	"sync/atomic"

	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/strategy"
)

// Fallback routes errors to the fallback strategy installed in one scope.
// It never fails; an empty slot is handled by its policy, which cannot be
// registry.PolicyError.
type Fallback struct {
	scope     registry.Scope
	policy    registry.Policy
	globals   *registry.Globals
	secondary strategy.Handler
	failed    atomic.Bool
}

// NewFallback returns a fallback handler for scope.
func NewFallback(scope registry.Scope, policy registry.Policy, opts ...Option) (*Fallback, error) {
	if policy == registry.PolicyError {
		return nil, ErrErrorPolicyOnFallback
	}
	s := newSettings(opts)
	return &Fallback{
		scope:     scope,
		policy:    policy,
		globals:   s.globals,
		secondary: s.secondary,
	}, nil
}

// MustFallback is NewFallback but panics on an invalid policy.
func MustFallback(scope registry.Scope, policy registry.Policy, opts ...Option) *Fallback {
	f, err := NewFallback(scope, policy, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Handle implements strategy.Handler.
func (f *Fallback) Handle(ctx context.Context, err error) {
	h, rerr := lookupFallback(ctx, f.scope, f.globals, f.policy == registry.PolicyUseDefault)
	if rerr == nil {
		f.failed.Store(false)
		h.Handle(ctx, err)
		return
	}

	switch f.policy {
	case registry.PolicyFlag:
		f.failed.Store(true)
		if f.secondary != nil {
			f.secondary.Handle(ctx, err)
		}
	case registry.PolicyIgnore:
	default:
		panic(rerr)
	}
}

// LastResolutionFailed reports whether the most recent call found the slot
// empty. Only PolicyFlag maintains it.
func (f *Fallback) LastResolutionFailed() bool {
	return f.failed.Load()
}

// Policy returns the handler's policy.
func (f *Fallback) Policy() registry.Policy { return f.policy }

// Scope returns the scope the handler reads.
func (f *Fallback) Scope() registry.Scope { return f.scope }
