// Package handler resolves registry slots into strategies at the moment an
// error needs routing.
//
// Primary and Fallback read a single scope and apply a registry.Policy when
// the slot is empty. PrimaryShim and FallbackShim consult the local slot
// first, then the global slot, and apply a terminal policy only when both
// are empty. Default wires the two shims into the chain used by finalizers
// that were given no strategy of their own.
package handler
