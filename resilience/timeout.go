package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/finalize/strategy"
)

// DefaultTimeout bounds a dispatch when no duration is configured.
const DefaultTimeout = 30 * time.Second

// Timeout bounds how long one dispatch may take.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a Timeout. A non-positive d selects DefaultTimeout.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &Timeout{d: d}
}

// Wrap returns h bounded by the timeout. The strategy runs on its own
// goroutine with a deadline context; if it ignores the deadline it keeps
// running after ErrTimeout is returned.
func (t *Timeout) Wrap(h strategy.FallibleHandler) strategy.FallibleHandler {
	return strategy.FallibleFunc(func(ctx context.Context, ferr error) error {
		ctx, cancel := context.WithTimeout(ctx, t.d)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- h.TryHandle(ctx, ferr)
		}()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		}
	})
}

// Duration returns the configured bound.
func (t *Timeout) Duration() time.Duration {
	return t.d
}
