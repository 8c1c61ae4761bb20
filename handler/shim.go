package handler

import (
	"context"
	"sync/atomic"

	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/strategy"
)

// PrimaryShim routes errors to the local primary strategy if one is
// installed, otherwise to the global one. Whatever that strategy returns is
// returned unchanged.
//
// When neither slot is initialized the terminal policy decides:
//   - PolicyPanic panics with an UnroutedError.
//   - PolicyIgnore returns nil.
//   - PolicyError returns an UnroutedError.
//   - PolicyFlag raises LastResolutionFailed and passes the error to the
//     secondary handler. Without a secondary it returns an UnroutedError.
//   - PolicyUseDefault uses a default strategy cached in the shim. Neither
//     slot is modified.
type PrimaryShim struct {
	policy    registry.Policy
	globals   *registry.Globals
	secondary strategy.Handler
	cached    strategy.FallibleHandler
	failed    atomic.Bool
}

// NewPrimaryShim returns a shim with the given terminal policy.
func NewPrimaryShim(policy registry.Policy, opts ...Option) *PrimaryShim {
	s := newSettings(opts)
	shim := &PrimaryShim{
		policy:    policy,
		globals:   s.globals,
		secondary: s.secondary,
	}
	if policy == registry.PolicyUseDefault {
		shim.cached = registry.DefaultPrimary()
	}
	return shim
}

// TryHandle implements strategy.FallibleHandler.
func (s *PrimaryShim) TryHandle(ctx context.Context, err error) error {
	if h, rerr := lookupPrimary(ctx, registry.Local, s.globals, false); rerr == nil {
		s.failed.Store(false)
		return h.TryHandle(ctx, err)
	}
	if h, rerr := lookupPrimary(ctx, registry.Global, s.globals, false); rerr == nil {
		s.failed.Store(false)
		return h.TryHandle(ctx, err)
	}

	unrouted := &UnroutedError{Role: registry.Primary, Err: err}
	switch s.policy {
	case registry.PolicyPanic:
		panic(unrouted)
	case registry.PolicyIgnore:
		return nil
	case registry.PolicyFlag:
		s.failed.Store(true)
		if s.secondary == nil {
			return unrouted
		}
		s.secondary.Handle(ctx, err)
		return nil
	case registry.PolicyUseDefault:
		return s.cached.TryHandle(ctx, err)
	default:
		return unrouted
	}
}

// LastResolutionFailed reports whether the most recent call found both
// slots empty. Only PolicyFlag maintains it.
func (s *PrimaryShim) LastResolutionFailed() bool {
	return s.failed.Load()
}

// Policy returns the terminal policy.
func (s *PrimaryShim) Policy() registry.Policy { return s.policy }

// FallbackShim is the fallback counterpart of PrimaryShim. It never fails,
// so its terminal policy cannot be registry.PolicyError.
type FallbackShim struct {
	policy    registry.Policy
	globals   *registry.Globals
	secondary strategy.Handler
	cached    strategy.Handler
	failed    atomic.Bool
}

// NewFallbackShim returns a shim with the given terminal policy.
func NewFallbackShim(policy registry.Policy, opts ...Option) (*FallbackShim, error) {
	if policy == registry.PolicyError {
		return nil, ErrErrorPolicyOnFallback
	}
	s := newSettings(opts)
	shim := &FallbackShim{
		policy:    policy,
		globals:   s.globals,
		secondary: s.secondary,
	}
	if policy == registry.PolicyUseDefault {
		shim.cached = registry.DefaultFallback()
	}
	return shim, nil
}

// MustFallbackShim is NewFallbackShim but panics on an invalid policy.
func MustFallbackShim(policy registry.Policy, opts ...Option) *FallbackShim {
	s, err := NewFallbackShim(policy, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Handle implements strategy.Handler.
func (s *FallbackShim) Handle(ctx context.Context, err error) {
	if h, rerr := lookupFallback(ctx, registry.Local, s.globals, false); rerr == nil {
		s.failed.Store(false)
		h.Handle(ctx, err)
		return
	}
	if h, rerr := lookupFallback(ctx, registry.Global, s.globals, false); rerr == nil {
		s.failed.Store(false)
		h.Handle(ctx, err)
		return
	}

	switch s.policy {
	case registry.PolicyIgnore:
	case registry.PolicyFlag:
		s.failed.Store(true)
		if s.secondary != nil {
			s.secondary.Handle(ctx, err)
		}
	case registry.PolicyUseDefault:
		s.cached.Handle(ctx, err)
	default:
		panic(&UnroutedError{Role: registry.Fallback, Err: err})
	}
}

// LastResolutionFailed reports whether the most recent call found both
// slots empty. Only PolicyFlag maintains it.
func (s *FallbackShim) LastResolutionFailed() bool {
	return s.failed.Load()
}

// Policy returns the terminal policy.
func (s *FallbackShim) Policy() registry.Policy { return s.policy }

// Default returns the chain used by finalizers that carry no strategy of
// their own: a PrimaryShim and a FallbackShim, both using their cached
// defaults when nothing is installed.
func Default(opts ...Option) *strategy.Chain {
	return strategy.NewChain(
		NewPrimaryShim(registry.PolicyUseDefault, opts...),
		MustFallbackShim(registry.PolicyUseDefault, opts...),
	)
}
