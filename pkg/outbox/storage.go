package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EnqueuerStorage defines the write side of the outbox.
type EnqueuerStorage interface {
	CreateEvent(ctx context.Context, event *Event) error
}

// WorkerStorage defines the claim/complete cycle consumed by the Worker.
type WorkerStorage interface {
	// ClaimEvent atomically claims the next due pending event, skipping
	// reservations listed in busy. Returns ErrNoEventToClaim when nothing
	// is due.
	ClaimEvent(ctx context.Context, workerID uuid.UUID, busy []string, lockDuration time.Duration) (*Event, error)

	// CompleteEvent marks a processing event as completed.
	CompleteEvent(ctx context.Context, eventID uuid.UUID) error

	// FailEvent records the error, increments the retry count and reschedules
	// the event with backoff while retries remain.
	FailEvent(ctx context.Context, eventID uuid.UUID, errorMsg string) error

	// MoveToDLQ moves an exhausted event to the dead letter queue.
	MoveToDLQ(ctx context.Context, eventID uuid.UUID) error
}

// Storage combines both sides. MemoryStorage implements it; a SQL-backed
// implementation can be swapped in behind the same contract.
type Storage interface {
	EnqueuerStorage
	WorkerStorage
}
