// Package pg bootstraps the PostgreSQL layer behind the notification
// storage.
//
// It wraps pgx/v5 with a small API: an env-driven Config, a Connect helper
// that retries with backoff until the database is reachable, a schema
// bootstrap for the DDL carried by the storage packages, and a healthcheck
// closure for readiness probes.
package pg
