package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewBulkhead_Defaults(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})
	if got := b.Stats().MaxConcurrent; got != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", got)
	}
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})

	entered := make(chan struct{})
	unblock := make(chan struct{})
	slow := b.Wrap(always(nil))
	blocking := b.Wrap(strategyBlocking(entered, unblock))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = blocking.TryHandle(context.Background(), errSink)
	}()
	<-entered

	if err := slow.TryHandle(context.Background(), errSink); err != ErrBulkheadFull {
		t.Errorf("TryHandle() error = %v, want ErrBulkheadFull", err)
	}
	stats := b.Stats()
	if stats.Active != 1 || stats.Available != 0 || stats.Rejected != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	close(unblock)
	wg.Wait()
	if err := slow.TryHandle(context.Background(), errSink); err != nil {
		t.Errorf("TryHandle() after release error = %v", err)
	}
}

func TestBulkhead_WaitTimesOut(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer b.Release()

	if err := b.Acquire(context.Background()); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() error = %v, want ErrBulkheadFull", err)
	}
}

func TestBulkhead_WaitCancelled(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Hour})
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer b.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Acquire(ctx); err != context.Canceled {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
}
