package outbox

import (
	"context"
	"fmt"
)

// Enqueuer records transition events for later delivery.
type Enqueuer struct {
	repo       EnqueuerStorage
	maxRetries int8
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithMaxRetries sets the retry budget stamped onto enqueued events.
func WithMaxRetries(n int8) EnqueuerOption {
	return func(e *Enqueuer) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// NewEnqueuer creates a new Enqueuer over the given storage.
func NewEnqueuer(repo EnqueuerStorage, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrStorageNil
	}

	e := &Enqueuer{
		repo:       repo,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Enqueue stores the event as pending. The event's MaxRetries is filled in
// from the enqueuer default when unset.
func (e *Enqueuer) Enqueue(ctx context.Context, event *Event) error {
	if event == nil {
		return ErrNilEvent
	}
	if event.MaxRetries <= 0 {
		event.MaxRetries = e.maxRetries
	}
	if event.Status == "" {
		event.Status = EventStatusPending
	}

	if err := e.repo.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to enqueue outbox event %s: %w", event.ID, err)
	}
	return nil
}
