package resilience

import "errors"

// Sentinel errors returned by decorated strategies.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a dispatch.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRetriesExhausted wraps the last failure once every attempt failed.
	ErrRetriesExhausted = errors.New("resilience: retries exhausted")

	// ErrRateLimited is returned when the rate limiter has no token left.
	ErrRateLimited = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when all dispatch slots are busy.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when a dispatch does not finish in time.
	ErrTimeout = errors.New("resilience: dispatch timed out")
)
