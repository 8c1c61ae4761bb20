package strategy

import (
	"context"
	"sync"
)

// Handler receives a finalizer error and cannot fail.
//
// Contract:
// - Concurrency: handlers installed globally must be safe for concurrent use.
// - Errors: Handle must not return; it may panic or exit when that is its purpose.
type Handler interface {
	Handle(ctx context.Context, err error)
}

// FallibleHandler receives a finalizer error and reports whether routing it
// succeeded.
//
// Contract:
// - Concurrency: handlers installed globally must be safe for concurrent use.
// - Errors: a non-nil result is the handler's own failure. It is passed on to
//   a fallback and never to the finalizer's owner.
type FallibleHandler interface {
	TryHandle(ctx context.Context, err error) error
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(ctx context.Context, err error)

// Handle calls f(ctx, err).
func (f HandlerFunc) Handle(ctx context.Context, err error) { f(ctx, err) }

// FallibleFunc adapts an ordinary function to FallibleHandler.
type FallibleFunc func(ctx context.Context, err error) error

// TryHandle calls f(ctx, err).
func (f FallibleFunc) TryHandle(ctx context.Context, err error) error { return f(ctx, err) }

// Fallible returns h as a FallibleHandler that never fails.
func Fallible(h Handler) FallibleHandler {
	return infallible{h: h}
}

type infallible struct{ h Handler }

func (i infallible) TryHandle(ctx context.Context, err error) error {
	i.h.Handle(ctx, err)
	return nil
}

// Serialized wraps a stateful function so that concurrent calls never overlap.
func Serialized(fn func(ctx context.Context, err error)) HandlerFunc {
	var mu sync.Mutex
	return func(ctx context.Context, err error) {
		mu.Lock()
		defer mu.Unlock()
		fn(ctx, err)
	}
}
