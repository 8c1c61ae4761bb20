package handler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/strategy"
)

// Primary routes errors to the primary strategy installed in one scope.
//
// When the slot is empty the policy decides:
//   - PolicyError returns the UninitializedError wrapped together with the
//     finalizer error, so a chain's fallback still sees the original cause.
//   - PolicyPanic panics with it.
//   - PolicyUseDefault installs registry.DefaultPrimary and uses it. A local
//     handler whose context carries no Locals uses the default without
//     retaining it.
//   - PolicyFlag raises LastResolutionFailed and passes the error to the
//     secondary handler, or returns the same error as PolicyError if there is
//     none.
//   - PolicyIgnore returns nil.
type Primary struct {
	scope     registry.Scope
	policy    registry.Policy
	globals   *registry.Globals
	secondary strategy.Handler
	failed    atomic.Bool
}

// NewPrimary returns a primary handler for scope.
func NewPrimary(scope registry.Scope, policy registry.Policy, opts ...Option) *Primary {
	s := newSettings(opts)
	return &Primary{
		scope:     scope,
		policy:    policy,
		globals:   s.globals,
		secondary: s.secondary,
	}
}

// TryHandle implements strategy.FallibleHandler.
func (p *Primary) TryHandle(ctx context.Context, err error) error {
	h, rerr := lookupPrimary(ctx, p.scope, p.globals, p.policy == registry.PolicyUseDefault)
	if rerr == nil {
		p.failed.Store(false)
		return h.TryHandle(ctx, err)
	}

	switch p.policy {
	case registry.PolicyPanic:
		panic(rerr)
	case registry.PolicyFlag:
		p.failed.Store(true)
		if p.secondary != nil {
			p.secondary.Handle(ctx, err)
			return nil
		}
		return fmt.Errorf("%w: %w", rerr, err)
	case registry.PolicyIgnore:
		return nil
	default:
		return fmt.Errorf("%w: %w", rerr, err)
	}
}

// LastResolutionFailed reports whether the most recent call found the slot
// empty. Only PolicyFlag maintains it.
func (p *Primary) LastResolutionFailed() bool {
	return p.failed.Load()
}

// Policy returns the handler's policy.
func (p *Primary) Policy() registry.Policy { return p.policy }

// Scope returns the scope the handler reads.
func (p *Primary) Scope() registry.Scope { return p.scope }
