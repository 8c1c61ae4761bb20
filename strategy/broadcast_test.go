package strategy

import (
	"context"
	"errors"
	"testing"
	"time"
)

func (b *Broadcast) snapshot() []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	return subs
}

func TestBroadcast_DeliversToAllSubscribers(t *testing.T) {
	b, first := NewBroadcast(BroadcastConfig{})
	second := b.Subscribe()
	testErr := errors.New("finalize failed")

	if err := b.TryHandle(context.Background(), testErr); err != nil {
		t.Fatalf("TryHandle() error = %v", err)
	}

	r1, ok := first.TryRecv()
	if !ok {
		t.Fatal("first subscriber received nothing")
	}
	r2, ok := second.TryRecv()
	if !ok {
		t.Fatal("second subscriber received nothing")
	}
	if r1.Err != testErr || r2.Err != testErr {
		t.Errorf("reports = %v, %v, want %v", r1.Err, r2.Err, testErr)
	}
	if r1.ID != r2.ID {
		t.Errorf("incident IDs differ: %v vs %v", r1.ID, r2.ID)
	}
}

func TestBroadcast_OkIfAlone(t *testing.T) {
	b, s := NewBroadcast(BroadcastConfig{Mode: OkIfAlone})
	s.Unsubscribe()

	if err := b.TryHandle(context.Background(), errors.New("x")); err != nil {
		t.Errorf("TryHandle() error = %v, want nil", err)
	}
}

func TestBroadcast_NeedsReceivers(t *testing.T) {
	b, s := NewBroadcast(BroadcastConfig{Mode: NeedsReceivers})
	s.Unsubscribe()

	if err := b.TryHandle(context.Background(), errors.New("x")); !errors.Is(err, ErrNoReceivers) {
		t.Errorf("TryHandle() error = %v, want %v", err, ErrNoReceivers)
	}
	if b.Receivers() != 0 {
		t.Errorf("Receivers() = %d, want 0", b.Receivers())
	}
}

func TestBroadcast_SendTimeout(t *testing.T) {
	b, _ := NewBroadcast(BroadcastConfig{Capacity: 1, SendTimeout: 10 * time.Millisecond})

	if err := b.TryHandle(context.Background(), errors.New("fills buffer")); err != nil {
		t.Fatalf("first TryHandle() error = %v", err)
	}
	if err := b.TryHandle(context.Background(), errors.New("blocks")); !errors.Is(err, ErrSendTimeout) {
		t.Errorf("second TryHandle() error = %v, want %v", err, ErrSendTimeout)
	}
}

func TestBroadcast_BlockedSendReleasedByReceiver(t *testing.T) {
	b, s := NewBroadcast(BroadcastConfig{Capacity: 1})
	_ = b.TryHandle(context.Background(), errors.New("one"))

	done := make(chan error, 1)
	go func() { done <- b.TryHandle(context.Background(), errors.New("two")) }()

	for _, want := range []string{"one", "two"} {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		r, err := s.Recv(ctx)
		cancel()
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		if r.Err.Error() != want {
			t.Errorf("Recv() = %v, want %v", r.Err, want)
		}
	}

	if err := <-done; err != nil {
		t.Errorf("blocked TryHandle() error = %v", err)
	}
}

func TestBroadcast_UnsubscribeReleasesBlockedSend(t *testing.T) {
	b, s := NewBroadcast(BroadcastConfig{Capacity: 1})
	_ = b.TryHandle(context.Background(), errors.New("one"))

	done := make(chan error, 1)
	go func() { done <- b.TryHandle(context.Background(), errors.New("two")) }()

	s.Unsubscribe()
	s.Unsubscribe()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("TryHandle() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("send still blocked after Unsubscribe")
	}
}

func TestBroadcast_ContextCancel(t *testing.T) {
	b, _ := NewBroadcast(BroadcastConfig{Capacity: 1})
	_ = b.TryHandle(context.Background(), errors.New("one"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.TryHandle(ctx, errors.New("two")); !errors.Is(err, context.Canceled) {
		t.Errorf("TryHandle() error = %v, want %v", err, context.Canceled)
	}
}
