package outbox

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("outbox storage cannot be nil")

	// ErrNilEvent is returned when attempting to enqueue a nil event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrEventNotFound is returned when an event id is unknown to storage.
	ErrEventNotFound = errors.New("outbox event not found")

	// ErrNoEventToClaim signals an empty queue. Not an error condition for
	// the worker, just a quiet tick.
	ErrNoEventToClaim = errors.New("no outbox event to claim")

	// ErrNoHandler is returned when the worker is started without a handler.
	ErrNoHandler = errors.New("no event handler registered")

	// ErrWorkerStarted is returned when Start is called twice.
	ErrWorkerStarted = errors.New("outbox worker already started")

	// ErrWorkerNotStarted is returned when Stop is called before Start.
	ErrWorkerNotStarted = errors.New("outbox worker not started")
)
