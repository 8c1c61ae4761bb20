package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations.
var (
	// ErrUninitialized matches every UninitializedError.
	ErrUninitialized = errors.New("registry: slot is not initialized")

	// ErrNestedScope matches every NestedScopeError.
	ErrNestedScope = errors.New("registry: nested scope guard")

	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("registry: unknown policy")
)

// UninitializedError reports a read of an empty slot.
type UninitializedError struct {
	Scope Scope
	Role  Role
}

func (e *UninitializedError) Error() string {
	return fmt.Sprintf("registry: the %s %s handler is not initialized", e.Scope, e.Role)
}

// Is reports whether target is ErrUninitialized.
func (e *UninitializedError) Is(target error) bool { return target == ErrUninitialized }

// NestedScopeError reports an attempt to open a second live guard on a slot.
type NestedScopeError struct {
	Scope Scope
	Role  Role
}

func (e *NestedScopeError) Error() string {
	return fmt.Sprintf("registry: you cannot nest %s %s scope guards", e.Scope, e.Role)
}

// Is reports whether target is ErrNestedScope.
func (e *NestedScopeError) Is(target error) bool { return target == ErrNestedScope }
