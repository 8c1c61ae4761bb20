// Package config builds and installs finalizer error strategies from a YAML
// document.
//
//	primary:
//	  kind: redis
//	  redis:
//	    url: ${REDIS_URL}
//	    password: secretref:file:/run/secrets/redis_password
//	    channel: finalize.errors
//	fallback:
//	  kind: log
//	  level: error
//	shim:
//	  primary_on_uninit: use_default
//	  fallback_on_uninit: panic
//	resilience:
//	  retry:
//	    max_attempts: 3
//	    initial_delay: 50ms
//	  circuit_breaker:
//	    max_failures: 5
//	    reset_timeout: 30s
//	  timeout: 2s
//	observe:
//	  service_name: billing
//	  logging:
//	    enabled: true
//	    level: info
//
// Environment variables are expanded before parsing; LoadEnv reads them
// from .env files first. Redis settings may also hold secret references,
// resolved by Build (see WithSecrets).
package config
