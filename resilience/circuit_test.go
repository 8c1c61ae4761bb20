package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(config CircuitBreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := newFakeClock()
	cb := NewCircuitBreaker(config)
	cb.now = clock.Now
	return cb, clock
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	if cb.config.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", cb.config.MaxFailures)
	}
	if cb.config.ResetTimeout != 30*time.Second {
		t.Errorf("ResetTimeout = %v, want 30s", cb.config.ResetTimeout)
	}
	if cb.config.HalfOpenMaxRequests != 1 {
		t.Errorf("HalfOpenMaxRequests = %d, want 1", cb.config.HalfOpenMaxRequests)
	}
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 3, ResetTimeout: time.Minute})
	s := &sink{failures: 100, err: errSink}
	h := cb.Wrap(s)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := h.TryHandle(ctx, errors.New("close")); err != errSink {
			t.Errorf("TryHandle() error = %v, want %v", err, errSink)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	if err := h.TryHandle(ctx, errors.New("close")); err != ErrCircuitOpen {
		t.Errorf("TryHandle() error = %v, want ErrCircuitOpen", err)
	}
	if got := s.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3 (open circuit must not dispatch)", got)
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 2})
	ctx := context.Background()

	_ = cb.Wrap(always(errSink)).TryHandle(ctx, errSink)
	_ = cb.Wrap(always(nil)).TryHandle(ctx, errSink)
	_ = cb.Wrap(always(errSink)).TryHandle(ctx, errSink)

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	if got := cb.Stats().Failures; got != 1 {
		t.Errorf("Failures = %d, want 1", got)
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})
	ctx := context.Background()

	_ = cb.Wrap(always(errSink)).TryHandle(ctx, errSink)
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	clock.Advance(time.Minute)
	if cb.State() != StateHalfOpen {
		t.Fatalf("State() = %v, want half-open", cb.State())
	}

	if err := cb.Wrap(always(nil)).TryHandle(ctx, errSink); err != nil {
		t.Errorf("probe error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed after successful probe", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})
	ctx := context.Background()
	h := cb.Wrap(always(errSink))

	_ = h.TryHandle(ctx, errSink)
	clock.Advance(time.Minute)
	_ = h.TryHandle(ctx, errSink)

	if cb.State() != StateOpen {
		t.Errorf("State() = %v, want open", cb.State())
	}
	if !cb.Stats().OpenedAt.Equal(clock.Now()) {
		t.Errorf("OpenedAt = %v, want %v", cb.Stats().OpenedAt, clock.Now())
	}
}

func TestCircuitBreaker_HalfOpenLimit(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})
	ctx := context.Background()
	_ = cb.Wrap(always(errSink)).TryHandle(ctx, errSink)
	clock.Advance(time.Minute)

	if err := cb.admit(); err != nil {
		t.Fatalf("first probe rejected: %v", err)
	}
	if err := cb.admit(); err != ErrCircuitOpen {
		t.Errorf("second probe error = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreaker_IsFailure(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return errors.Is(err, errSink) },
	})
	_ = cb.Wrap(always(context.Canceled)).TryHandle(context.Background(), errSink)

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_ResetAndStateChange(t *testing.T) {
	var transitions []string
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = cb.Wrap(always(errSink)).TryHandle(context.Background(), errSink)
	cb.Reset()
	cb.Reset()

	want := []string{"closed->open", "open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transitions[%d] = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(42):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
