package registry

import (
	"context"
	"sync"

	"github.com/jonwraymond/finalize/strategy"
)

// DefaultPrimary builds the strategy installed by PolicyUseDefault in a
// primary slot: errors are written to stderr.
func DefaultPrimary() strategy.FallibleHandler {
	return strategy.Stderr()
}

// DefaultFallback builds the strategy installed by PolicyUseDefault in a
// fallback slot: it panics.
func DefaultFallback() strategy.Handler {
	return strategy.NewPanic("")
}

// Globals is a process-wide pair of slots.
type Globals struct {
	Primary  *Slot[strategy.FallibleHandler]
	Fallback *Slot[strategy.Handler]
}

// NewGlobals returns an empty, independent pair of global slots.
func NewGlobals() *Globals {
	return &Globals{
		Primary:  NewSlot(Primary, DefaultPrimary),
		Fallback: NewSlot(Fallback, DefaultFallback),
	}
}

var (
	processOnce sync.Once
	process     *Globals
)

// Process returns the slots shared by the whole process.
func Process() *Globals {
	processOnce.Do(func() {
		process = NewGlobals()
	})
	return process
}

// Locals is a pair of slots owned by one goroutine.
type Locals struct {
	Primary  *LocalSlot[strategy.FallibleHandler]
	Fallback *LocalSlot[strategy.Handler]
}

// NewLocals returns an empty pair of local slots.
func NewLocals() *Locals {
	return &Locals{
		Primary:  NewLocalSlot(Primary, DefaultPrimary),
		Fallback: NewLocalSlot(Fallback, DefaultFallback),
	}
}

// Clone returns new Locals holding the same occupants as l. Guards opened on
// l do not carry over. Clone must run on the goroutine that owns l; the copy
// may then be handed to another goroutine.
func (l *Locals) Clone() *Locals {
	c := NewLocals()
	if l.Primary.ok {
		c.Primary.val, c.Primary.ok = l.Primary.val, true
	}
	if l.Fallback.ok {
		c.Fallback.val, c.Fallback.ok = l.Fallback.val, true
	}
	return c
}

type localsKey struct{}

// WithLocals returns a child of ctx carrying a fresh Locals.
//
// The Locals must only be used by the goroutine that owns ctx. Goroutines
// spawned with a derived context should call WithLocals again.
func WithLocals(ctx context.Context) context.Context {
	return ContextWithLocals(ctx, NewLocals())
}

// ContextWithLocals returns a child of ctx carrying l.
func ContextWithLocals(ctx context.Context, l *Locals) context.Context {
	return context.WithValue(ctx, localsKey{}, l)
}

// LocalsFrom returns the Locals carried by ctx, or nil.
func LocalsFrom(ctx context.Context) *Locals {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(localsKey{}).(*Locals)
	return l
}

// MustLocalsFrom is LocalsFrom but panics if ctx carries no Locals.
func MustLocalsFrom(ctx context.Context) *Locals {
	l := LocalsFrom(ctx)
	if l == nil {
		panic("registry: context carries no local handlers; derive it with registry.WithLocals")
	}
	return l
}
