package outbox

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reservekit/pkg/reservation"
)

// EventStatus represents the processing state of an outbox event.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusFailed     EventStatus = "failed"
)

// Event records one reservation transition awaiting side-effect delivery.
// The embedded snapshot is what the handler acts on; for deletion events it
// is the final state of the record before removal.
type Event struct {
	ID            uuid.UUID                  `json:"id"`
	ReservationID string                     `json:"reservation_id"`
	Kind          reservation.TransitionKind `json:"kind"`
	From          reservation.Status         `json:"from,omitempty"`
	To            reservation.Status         `json:"to,omitempty"`
	Signature     string                     `json:"signature"`
	Reservation   *reservation.Reservation   `json:"reservation,omitempty"`
	Status        EventStatus                `json:"status"`
	RetryCount    int8                       `json:"retry_count"`
	MaxRetries    int8                       `json:"max_retries"`
	ScheduledAt   time.Time                  `json:"scheduled_at"`
	LockedUntil   *time.Time                 `json:"locked_until,omitempty"`
	LockedBy      *uuid.UUID                 `json:"locked_by,omitempty"`
	ProcessedAt   *time.Time                 `json:"processed_at,omitempty"`
	Error         *string                    `json:"error,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// EventDlq stores an event that exhausted all retries, kept for manual
// inspection and recovery.
type EventDlq struct {
	ID            uuid.UUID                  `json:"id"`
	EventID       uuid.UUID                  `json:"event_id"`
	ReservationID string                     `json:"reservation_id"`
	Kind          reservation.TransitionKind `json:"kind"`
	Signature     string                     `json:"signature"`
	Reservation   *reservation.Reservation   `json:"reservation,omitempty"`
	Error         string                     `json:"error"`
	RetryCount    int8                       `json:"retry_count"`
	FailedAt      time.Time                  `json:"failed_at"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// Signature derives the idempotency key for a transition. Two enqueues of
// the same reservation transition produce the same signature, so redelivery
// can be detected downstream.
func Signature(reservationID string, t reservation.Transition) string {
	return fmt.Sprintf("%s:%s:%s>%s", reservationID, t.Kind, t.From, t.To)
}

// NewEvent builds a pending Event from a store transition and the
// reservation snapshot it applies to.
func NewEvent(r *reservation.Reservation, t reservation.Transition) *Event {
	now := time.Now()
	id := ""
	if r != nil {
		id = r.ID
	}
	return &Event{
		ID:            uuid.New(),
		ReservationID: id,
		Kind:          t.Kind,
		From:          t.From,
		To:            t.To,
		Signature:     Signature(id, t),
		Reservation:   r,
		Status:        EventStatusPending,
		MaxRetries:    3,
		ScheduledAt:   now,
		CreatedAt:     now,
	}
}
