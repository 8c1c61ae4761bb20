package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/finalize/strategy"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of dispatches allowed per second.
	// Default: 100
	Rate float64

	// Burst is the bucket size.
	// Default: 10
	Burst int

	// WaitOnLimit waits up to MaxWait for a token instead of failing.
	WaitOnLimit bool

	// MaxWait bounds the wait when WaitOnLimit is set.
	// Default: 1 second
	MaxWait time.Duration
}

// RateLimiter is a token bucket in front of a strategy. It keeps a storm of
// finalizer errors from flooding a remote sink; rejected errors go to the
// fallback.
type RateLimiter struct {
	config RateLimiterConfig

	mu     sync.Mutex
	tokens float64
	last   time.Time
	now    func() time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &RateLimiter{
		config: config,
		tokens: float64(config.Burst),
		last:   time.Now(),
		now:    time.Now,
	}
}

// Wrap returns h behind the limiter.
func (rl *RateLimiter) Wrap(h strategy.FallibleHandler) strategy.FallibleHandler {
	return strategy.FallibleFunc(func(ctx context.Context, ferr error) error {
		if err := rl.acquire(ctx); err != nil {
			return err
		}
		return h.TryHandle(ctx, ferr)
	})
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	_, ok := rl.take()
	return ok
}

// take removes one token, or reports how long until one is available.
func (rl *RateLimiter) take() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= 1 {
		rl.tokens--
		return 0, true
	}
	return time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second)), false
}

func (rl *RateLimiter) acquire(ctx context.Context) error {
	wait, ok := rl.take()
	if ok {
		return nil
	}
	if !rl.config.WaitOnLimit {
		return ErrRateLimited
	}

	timer := time.NewTimer(min(wait, rl.config.MaxWait))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if rl.Allow() {
			return nil
		}
		return ErrRateLimited
	}
}

func (rl *RateLimiter) refillLocked() {
	now := rl.now()
	rl.tokens = min(rl.tokens+now.Sub(rl.last).Seconds()*rl.config.Rate, float64(rl.config.Burst))
	rl.last = now
}

// Tokens returns the number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset refills the bucket.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = float64(rl.config.Burst)
	rl.last = rl.now()
}
