// Package strategy defines the capabilities that receive finalizer errors and
// the leaf strategies that implement them.
//
// A finalizer that fails during automatic cleanup has no caller to return its
// error to. Instead the error is handed to a strategy:
//
//   - Handler receives an error and cannot fail.
//   - FallibleHandler receives an error and may itself fail. Its failure is
//     passed on to an infallible fallback by a Chain.
//
// Every Handler can be used where a FallibleHandler is expected through
// Fallible, which never reports a failure.
//
// # Leaf strategies
//
//   - Noop drops errors.
//   - Panic, Unreachable panic with the error attached.
//   - Exit and Abort terminate the process.
//   - Write renders errors to an io.Writer (Stderr, Stdout).
//   - OnceCell keeps the first error it receives.
//   - Broadcast fans errors out to subscribers as Reports.
//   - Log records errors with log/slog.
//
// Ad hoc strategies are plain functions wrapped in HandlerFunc or
// FallibleFunc; Serialized guards a stateful function with a mutex.
package strategy
