// Package health reports whether finalizer errors in a process still have
// somewhere to go.
//
// A Checker reports a Status: Healthy, Degraded or Unhealthy. The Aggregator
// runs many checkers concurrently and folds their results; the HTTP handlers
// expose the folded result as liveness, readiness and detail endpoints.
//
// # Checkers
//
// RegistryChecker inspects a registry.Globals. An empty slot whose handler
// would panic or fail on first use is unhealthy; a flag-policy handler whose
// last resolution failed is degraded.
//
//	agg := health.NewAggregator()
//	agg.Register("registry", health.NewRegistryChecker(health.RegistryCheckerConfig{
//	    Globals:        registry.Process(),
//	    PrimaryPolicy:  registry.PolicyError,
//	    FallbackPolicy: registry.PolicyPanic,
//	    Flaggers:       map[string]health.Flagger{"shim": shim},
//	}))
//	agg.Register("redis", health.NewPingChecker("redis", publisher.Ping))
//
//	health.RegisterHandlers(mux, agg)
package health
