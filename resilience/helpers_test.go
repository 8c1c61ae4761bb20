package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/finalize/strategy"
)

// sink is a strategy that fails its first `failures` dispatches.
type sink struct {
	failures int32
	err      error
	calls    atomic.Int32
}

func (s *sink) TryHandle(ctx context.Context, err error) error {
	if s.calls.Add(1) <= s.failures {
		return s.err
	}
	return nil
}

func always(err error) strategy.FallibleHandler {
	return strategy.FallibleFunc(func(context.Context, error) error { return err })
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// strategyBlocking signals entered and then blocks until unblock is closed.
func strategyBlocking(entered chan<- struct{}, unblock <-chan struct{}) strategy.FallibleHandler {
	return strategy.FallibleFunc(func(context.Context, error) error {
		close(entered)
		<-unblock
		return nil
	})
}
