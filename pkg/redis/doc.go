// Package redis connects the service to the Redis instance backing the
// outbox idempotency guard.
//
// It wraps go-redis with a retrying Connect driven by an env-populated
// Config, plus a healthcheck closure for readiness probes.
package redis
