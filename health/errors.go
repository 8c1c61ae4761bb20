package health

import "errors"

var (
	// ErrHandlerMissing is the Result.Error of a RegistryChecker that found a
	// slot empty under a policy that fails or panics. It also matches
	// registry.ErrUninitialized.
	ErrHandlerMissing = errors.New("health: finalizer handler not installed")

	// ErrUnreachable wraps the error of a failed ping.
	ErrUnreachable = errors.New("health: sink unreachable")

	// ErrCheckTimeout is the Result.Error of a check that outlived the
	// aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Aggregator.Check for unknown names.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
