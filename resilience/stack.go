package resilience

import (
	"time"

	"github.com/jonwraymond/finalize/strategy"
)

// Stack composes resilience patterns around a strategy.
type Stack struct {
	breaker  *CircuitBreaker
	retry    *Retry
	limiter  *RateLimiter
	bulkhead *Bulkhead
	timeout  *Timeout
}

// StackOption configures a Stack.
type StackOption func(*Stack)

// NewStack creates a Stack. With no options Wrap returns the strategy as is.
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithCircuitBreaker adds a circuit breaker.
func WithCircuitBreaker(cb *CircuitBreaker) StackOption {
	return func(s *Stack) { s.breaker = cb }
}

// WithRetry adds redelivery.
func WithRetry(r *Retry) StackOption {
	return func(s *Stack) { s.retry = r }
}

// WithRateLimiter adds rate limiting.
func WithRateLimiter(rl *RateLimiter) StackOption {
	return func(s *Stack) { s.limiter = rl }
}

// WithBulkhead adds concurrency limiting.
func WithBulkhead(b *Bulkhead) StackOption {
	return func(s *Stack) { s.bulkhead = b }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) StackOption {
	return func(s *Stack) { s.timeout = NewTimeout(d) }
}

// Wrap decorates h. From outermost to innermost the order is:
//  1. rate limiter
//  2. bulkhead
//  3. circuit breaker
//  4. retry
//  5. timeout (per attempt)
func (s *Stack) Wrap(h strategy.FallibleHandler) strategy.FallibleHandler {
	if s.timeout != nil {
		h = s.timeout.Wrap(h)
	}
	if s.retry != nil {
		h = s.retry.Wrap(h)
	}
	if s.breaker != nil {
		h = s.breaker.Wrap(h)
	}
	if s.bulkhead != nil {
		h = s.bulkhead.Wrap(h)
	}
	if s.limiter != nil {
		h = s.limiter.Wrap(h)
	}
	return h
}
