package reservation

import "time"

// Reservation is a booked dining slot. The booking subsystem owns the
// record; the notification engine only reads it and observes its writes.
type Reservation struct {
	ID              string     `json:"id"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	CustomerPhone   string     `json:"customer_phone"`
	Date            string     `json:"date"` // YYYY-MM-DD
	Time            string     `json:"time"` // HH:MM
	Guests          int        `json:"guests"`
	Status          Status     `json:"status"`
	TableNumber     int        `json:"table_number,omitempty"`
	SpecialRequests string     `json:"special_requests,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TransitionKind classifies a reservation write.
type TransitionKind string

const (
	TransitionCreated       TransitionKind = "created"
	TransitionStatusChanged TransitionKind = "status_changed"
	TransitionUnchanged     TransitionKind = "unchanged"
	TransitionDeleted       TransitionKind = "deleted"
)

// Transition is the classified outcome of a single store write.
// From is empty for Created; To is the status the record ended up with
// (for Deleted, the status it had when it was removed).
type Transition struct {
	Kind TransitionKind `json:"kind"`
	From Status         `json:"from,omitempty"`
	To   Status         `json:"to,omitempty"`
}
