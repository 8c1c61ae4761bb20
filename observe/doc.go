// Package observe instruments finalizer error routing.
//
// It wraps strategies so that every dispatch produces a span, counters, a
// duration sample and a structured log line, all tagged with the same
// incident ID. It performs no routing of its own; consumers wrap the
// strategies they install with Middleware.Wrap or Middleware.WrapHandler.
package observe
