// Package secret resolves secret references in configuration values, such
// as the password of a redis sink.
//
// References use the prefix "secretref:":
//   - Full value:  secretref:file:/run/secrets/redis_password
//   - Inline use:  redis://:secretref:env:REDIS_PASSWORD@cache:6379/0
package secret
