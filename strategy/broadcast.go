package strategy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Report is a finalizer error as delivered to broadcast subscribers.
type Report struct {
	// ID identifies the incident across subscribers and log lines.
	ID uuid.UUID
	// Err is the finalizer error.
	Err error
	// Time is when the error was handled.
	Time time.Time
}

// NewReport stamps err with a fresh incident ID.
func NewReport(err error) Report {
	return Report{ID: uuid.New(), Err: err, Time: time.Now()}
}

// BroadcastMode selects what a Broadcast does with no subscribers.
type BroadcastMode int

const (
	// OkIfAlone drops errors when nobody is subscribed.
	OkIfAlone BroadcastMode = iota
	// NeedsReceivers fails with ErrNoReceivers when nobody is subscribed.
	NeedsReceivers
)

// BroadcastConfig configures a Broadcast.
type BroadcastConfig struct {
	// Capacity is the buffer size of each subscriber channel.
	// Default: 16
	Capacity int

	// Mode selects the behavior with no subscribers.
	// Default: OkIfAlone
	Mode BroadcastMode

	// SendTimeout bounds how long a send waits for a full subscriber.
	// Zero waits until the subscriber drains or the context ends.
	SendTimeout time.Duration
}

// Broadcast delivers every error to all current subscribers.
//
// Each subscriber owns a bounded channel. A send to a full channel blocks
// until the subscriber drains it, the subscriber leaves, SendTimeout passes
// or ctx ends.
type Broadcast struct {
	config BroadcastConfig

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// Subscription receives Reports from a Broadcast.
type Subscription struct {
	// C delivers reports. It is never closed.
	C <-chan Report

	ch   chan Report
	done chan struct{}
	once sync.Once
	b    *Broadcast
}

// NewBroadcast returns a Broadcast together with its first subscription.
func NewBroadcast(config BroadcastConfig) (*Broadcast, *Subscription) {
	if config.Capacity <= 0 {
		config.Capacity = 16
	}
	b := &Broadcast{
		config: config,
		subs:   make(map[*Subscription]struct{}),
	}
	return b, b.Subscribe()
}

// Subscribe adds a subscriber that receives errors handled from now on.
func (b *Broadcast) Subscribe() *Subscription {
	ch := make(chan Report, b.config.Capacity)
	s := &Subscription{C: ch, ch: ch, done: make(chan struct{}), b: b}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Receivers returns the number of live subscriptions.
func (b *Broadcast) Receivers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Unsubscribe detaches s. Blocked sends to s are abandoned. Safe to call twice.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs, s)
		s.b.mu.Unlock()
		close(s.done)
	})
}

// Recv blocks until a report arrives or ctx ends.
func (s *Subscription) Recv(ctx context.Context) (Report, error) {
	select {
	case r := <-s.ch:
		return r, nil
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// TryRecv returns a buffered report without blocking.
func (s *Subscription) TryRecv() (Report, bool) {
	select {
	case r := <-s.ch:
		return r, true
	default:
		return Report{}, false
	}
}

// TryHandle implements FallibleHandler.
func (b *Broadcast) TryHandle(ctx context.Context, err error) error {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	if len(subs) == 0 {
		if b.config.Mode == NeedsReceivers {
			return ErrNoReceivers
		}
		return nil
	}

	report := NewReport(err)
	var errs []error
	for _, s := range subs {
		if serr := b.send(ctx, s, report); serr != nil {
			errs = append(errs, serr)
		}
	}
	return errors.Join(errs...)
}

// Handle implements Handler. Delivery failures are dropped.
func (b *Broadcast) Handle(ctx context.Context, err error) {
	_ = b.TryHandle(ctx, err)
}

func (b *Broadcast) send(ctx context.Context, s *Subscription, r Report) error {
	var timeout <-chan time.Time
	if b.config.SendTimeout > 0 {
		t := time.NewTimer(b.config.SendTimeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case s.ch <- r:
		return nil
	case <-s.done:
		return nil
	case <-timeout:
		return ErrSendTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
