// Package reservation holds the reservation domain model and its store.
//
// The store is the only writer of reservation records. Save computes the
// status diff (previous vs. new, both normalized to the canonical enum) as
// part of a single locked read-modify-write and returns the resulting
// Transition, so callers never need to correlate pre- and post-write state
// themselves. Status transitions are unrestricted: any status may move to
// any other status.
//
// Legacy status spellings (lowercase English and the original French labels)
// are normalized before comparison, so a normalization-only write is
// reported as Unchanged rather than StatusChanged.
package reservation
