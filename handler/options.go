package handler

import (
	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/strategy"
)

// Option configures a handler.
type Option func(*settings)

type settings struct {
	globals   *registry.Globals
	secondary strategy.Handler
}

// WithGlobals resolves global slots from g instead of registry.Process().
func WithGlobals(g *registry.Globals) Option {
	return func(s *settings) { s.globals = g }
}

// WithSecondary sets the handler that receives the original error when
// registry.PolicyFlag fires.
func WithSecondary(h strategy.Handler) Option {
	return func(s *settings) { s.secondary = h }
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.globals == nil {
		s.globals = registry.Process()
	}
	return s
}
