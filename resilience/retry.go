package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/finalize/strategy"
)

// BackoffStrategy defines how delays increase between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases delay linearly.
	BackoffLinear
	// BackoffConstant uses the same delay for all retries.
	BackoffConstant
)

// ParseBackoff maps a configuration name to a BackoffStrategy. Unknown and
// empty names select BackoffExponential.
func ParseBackoff(s string) BackoffStrategy {
	switch s {
	case "linear":
		return BackoffLinear
	case "constant":
		return BackoffConstant
	default:
		return BackoffExponential
	}
}

// RetryConfig configures redelivery.
type RetryConfig struct {
	// MaxAttempts is the maximum number of deliveries, including the first.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the growth factor for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter adds up to 25% to each delay.
	Jitter bool

	// RetryIf reports whether a strategy failure is worth another attempt.
	// Default: every failure except ErrCircuitOpen.
	RetryIf func(err error) bool

	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry redelivers a finalizer error to a strategy that failed.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry, applying defaults to zero fields.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = retryable
	}
	return &Retry{config: config}
}

func retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrCircuitOpen)
}

// Wrap returns h redelivering each error up to MaxAttempts times.
//
// The last failure is returned wrapped in ErrRetriesExhausted. A failure
// rejected by RetryIf is returned unchanged. Cancelling ctx while waiting
// returns ctx.Err().
func (r *Retry) Wrap(h strategy.FallibleHandler) strategy.FallibleHandler {
	return strategy.FallibleFunc(func(ctx context.Context, ferr error) error {
		return r.deliver(ctx, h, ferr)
	})
}

func (r *Retry) deliver(ctx context.Context, h strategy.FallibleHandler, ferr error) error {
	var last error
	for attempt := 1; ; attempt++ {
		last = h.TryHandle(ctx, ferr)
		if last == nil {
			return nil
		}
		if !r.config.RetryIf(last) {
			return last
		}
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, last, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.config.MaxAttempts, last)
}

// backoff returns the delay after the given failed attempt (1-based).
func (r *Retry) backoff(attempt int) time.Duration {
	c := r.config

	var delay time.Duration
	switch c.Strategy {
	case BackoffConstant:
		delay = c.InitialDelay
	case BackoffLinear:
		delay = c.InitialDelay * time.Duration(attempt)
	default:
		delay = time.Duration(float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1)))
	}

	delay = min(delay, c.MaxDelay)
	if c.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
