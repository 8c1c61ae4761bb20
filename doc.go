// Package finalize routes errors from fallible cleanup to swappable
// strategies.
//
// Cleanup that runs when an object is discarded has nobody to return an
// error to. Wrap the object with Adapt and its error goes to a chain: a
// fallible primary strategy, then an infallible fallback for when the
// primary itself fails.
//
// Strategies are looked up when an error occurs:
//
//   - a local strategy installed on the context (WithLocals, InstallLocalPrimary)
//   - otherwise the process-wide strategy (InstallPrimary)
//   - otherwise the defaults: write to stderr, and panic if that fails
//
// ScopePrimary and ScopeFallback override the local strategy for a block:
//
//	ctx = finalize.WithLocals(ctx)
//	guard := finalize.ScopePrimary(ctx, strategy.NewOnceCell(strategy.OnceIgnore))
//	defer guard.Release()
//
// The sub-packages hold the pieces: strategy (leaf strategies and Chain),
// registry (slots and policies), handler (scope resolution), adapter
// (at-most-once finalization), and config (declarative setup).
package finalize
