// Package registry stores the strategies that receive finalizer errors.
//
// There are two scopes and two roles:
//
//   - Global slots live in a Globals value shared by the whole process
//     (see Process). They are guarded by a sync.RWMutex, so reads run
//     concurrently and installs are exclusive.
//   - Local slots live in a Locals value carried by a context.Context
//     (see WithLocals). They take no lock and belong to the goroutine that
//     owns the context. Touching a local slot from inside one of its own
//     callbacks panics.
//   - The Primary role holds a strategy.FallibleHandler; the Fallback role
//     holds an infallible strategy.Handler.
//
// Scope and TryScope install a strategy for the duration of a block and
// restore the previous occupant on Release. Only one guard may be live per
// slot at a time.
package registry
