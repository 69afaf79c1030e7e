// Package outbox decouples reservation writes from notification and email
// side effects.
//
// Every transition detected by the reservation store is recorded as an
// Event carrying a snapshot of the reservation and an idempotency
// signature. A background Worker claims events with a lock, hands them to
// a handler and retries failures with backoff until MaxRetries, after
// which the event lands in the dead letter queue for manual inspection.
//
// Delivery is at-least-once. Handlers that must not repeat a side effect
// (sending an email twice for the same transition) consult an
// IdempotencyGuard keyed by the event signature; a Redis-backed guard and
// an in-memory guard are provided.
//
// Events for the same reservation are never processed concurrently: the
// worker serializes them through per-reservation keyed locks.
package outbox
