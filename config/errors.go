package config

import "errors"

var (
	// ErrUnknownKind indicates a strategy kind that Build does not know.
	ErrUnknownKind = errors.New("config: unknown strategy kind")

	// ErrFallibleFallback indicates a fallback strategy that can fail.
	ErrFallibleFallback = errors.New("config: fallback strategy must not be fallible")

	// ErrMissingRedisURL indicates a redis strategy without a URL.
	ErrMissingRedisURL = errors.New("config: redis strategy requires redis.url")

	// ErrInvalidLevel indicates an unknown log level.
	ErrInvalidLevel = errors.New("config: invalid log level")
)
