package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLimiter(config RateLimiterConfig) (*RateLimiter, *fakeClock) {
	clock := newFakeClock()
	rl := NewRateLimiter(config)
	rl.now = clock.Now
	rl.last = clock.Now()
	return rl, clock
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})

	if rl.config.Rate != 100 {
		t.Errorf("Rate = %f, want 100", rl.config.Rate)
	}
	if rl.config.Burst != 10 {
		t.Errorf("Burst = %d, want 10", rl.config.Burst)
	}
	if rl.config.MaxWait != time.Second {
		t.Errorf("MaxWait = %v, want 1s", rl.config.MaxWait)
	}
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl, _ := newTestLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	s := &sink{}
	h := rl.Wrap(s)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := h.TryHandle(ctx, errors.New("close")); err != nil {
			t.Fatalf("dispatch %d error = %v", i, err)
		}
	}
	if err := h.TryHandle(ctx, errors.New("close")); err != ErrRateLimited {
		t.Errorf("TryHandle() error = %v, want ErrRateLimited", err)
	}
	if got := s.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl, clock := newTestLimiter(RateLimiterConfig{Rate: 10, Burst: 1})

	if !rl.Allow() {
		t.Fatal("first Allow() = false")
	}
	if rl.Allow() {
		t.Fatal("second Allow() = true, want false")
	}

	clock.Advance(200 * time.Millisecond)
	if !rl.Allow() {
		t.Error("Allow() after refill = false")
	}
}

func TestRateLimiter_TokensCapped(t *testing.T) {
	rl, clock := newTestLimiter(RateLimiterConfig{Rate: 100, Burst: 3})
	clock.Advance(time.Hour)

	if got := rl.Tokens(); got != 3 {
		t.Errorf("Tokens() = %f, want 3", got)
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	rl, _ := newTestLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	rl.Allow()
	rl.Allow()
	rl.Reset()

	if got := rl.Tokens(); got != 2 {
		t.Errorf("Tokens() = %f, want 2", got)
	}
}

func TestRateLimiter_WaitOnLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1, WaitOnLimit: true, MaxWait: time.Second})
	h := rl.Wrap(always(nil))
	ctx := context.Background()

	if err := h.TryHandle(ctx, errSink); err != nil {
		t.Fatalf("first dispatch error = %v", err)
	}
	if err := h.TryHandle(ctx, errSink); err != nil {
		t.Errorf("second dispatch error = %v, want wait then success", err)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1, WaitOnLimit: true, MaxWait: time.Hour})
	rl.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Wrap(always(nil)).TryHandle(ctx, errSink); err != context.Canceled {
		t.Errorf("TryHandle() error = %v, want context.Canceled", err)
	}
}
