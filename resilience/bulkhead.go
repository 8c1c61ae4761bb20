package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/finalize/strategy"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of concurrent dispatches.
	// Default: 10
	MaxConcurrent int

	// MaxWait is how long a dispatch waits for a free slot.
	// Default: 0 (fail immediately)
	MaxWait time.Duration
}

// Bulkhead bounds the number of goroutines blocked inside a slow strategy.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	active   atomic.Int64
	rejected atomic.Int64
}

// NewBulkhead creates a bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Wrap returns h limited to MaxConcurrent simultaneous dispatches.
func (b *Bulkhead) Wrap(h strategy.FallibleHandler) strategy.FallibleHandler {
	return strategy.FallibleFunc(func(ctx context.Context, ferr error) error {
		if err := b.Acquire(ctx); err != nil {
			return err
		}
		defer b.Release()
		return h.TryHandle(ctx, ferr)
	})
}

// Acquire takes a slot, waiting at most MaxWait.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		b.active.Add(1)
		return nil
	}
	if b.config.MaxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	wctx, cancel := context.WithTimeout(ctx, b.config.MaxWait)
	defer cancel()
	if err := b.sem.Acquire(wctx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			b.rejected.Add(1)
			return ErrBulkheadFull
		}
		return err
	}
	b.active.Add(1)
	return nil
}

// Release returns a slot taken by Acquire.
func (b *Bulkhead) Release() {
	b.active.Add(-1)
	b.sem.Release(1)
}

// Stats returns current bulkhead statistics.
func (b *Bulkhead) Stats() BulkheadStats {
	active := int(b.active.Load())
	return BulkheadStats{
		Active:        active,
		Available:     b.config.MaxConcurrent - active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected.Load(),
	}
}

// BulkheadStats contains bulkhead statistics.
type BulkheadStats struct {
	Active        int
	Available     int
	MaxConcurrent int
	Rejected      int64
}
