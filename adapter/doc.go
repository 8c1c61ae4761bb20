// Package adapter runs a value's fallible cleanup at most once and routes
// its error to a strategy chain.
//
// Wrap a value with New and call Finalize (or Close) when it is done. The
// value's Finalize method runs exactly once; its error is handed to the
// chain. Unless the adapter was given strategies of its own, that chain is
// handler.Default, which resolves local then global registries.
//
// WithCleanup additionally arranges for the finalizer to run when the
// adapter becomes unreachable and is collected.
package adapter
