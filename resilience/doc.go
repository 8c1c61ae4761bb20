// Package resilience decorates fallible strategies so that a flaky error sink
// (a network publisher, a remote log) degrades predictably.
//
// Every pattern exposes Wrap, which returns a new strategy.FallibleHandler.
// When a decorated strategy gives up, its error reaches the fallback of the
// surrounding strategy.Chain exactly as an undecorated failure would.
//
// # Patterns
//
//   - Retry: redelivers the finalizer error with exponential, linear or
//     constant backoff.
//
//   - CircuitBreaker: stops calling a strategy that keeps failing and fails
//     fast with ErrCircuitOpen until the reset timeout elapses.
//
//   - RateLimiter: token bucket that rejects bursts with ErrRateLimited.
//
//   - Bulkhead: bounds concurrent dispatches with ErrBulkheadFull.
//
//   - Timeout: bounds the duration of one dispatch with ErrTimeout.
//
// Only delivery of the error is retried. The cleanup that produced it never
// runs again.
//
// # Usage
//
//	pub := redispub.New(client, "finalize.errors")
//
//	stack := resilience.NewStack(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures:  5,
//	        ResetTimeout: time.Minute,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(time.Second),
//	)
//
//	finalize.InstallPrimary(stack.Wrap(pub))
package resilience
