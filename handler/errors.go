package handler

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/finalize/registry"
)

// ErrErrorPolicyOnFallback is returned when a fallback handler is built with
// registry.PolicyError. Fallbacks cannot fail, so they cannot report errors.
var ErrErrorPolicyOnFallback = errors.New("handler: fallback handlers cannot use the error policy")

// UnroutedError reports that neither the local nor the global slot for Role
// was initialized. Err is the finalizer error that could not be routed.
type UnroutedError struct {
	Role registry.Role
	Err  error
}

func (e *UnroutedError) Error() string {
	return fmt.Sprintf("handler: neither the local nor the global %s handler is initialized (finalizer error: %v)", e.Role, e.Err)
}

// Unwrap returns the finalizer error.
func (e *UnroutedError) Unwrap() error { return e.Err }

// Is reports whether target is registry.ErrUninitialized.
func (e *UnroutedError) Is(target error) bool { return target == registry.ErrUninitialized }
