package reservation

import "errors"

var (
	// ErrNotFound is returned when a reservation does not exist.
	ErrNotFound = errors.New("reservation not found")

	// ErrNilReservation is returned when Save is called with a nil record.
	ErrNilReservation = errors.New("reservation cannot be nil")

	// ErrMissingID is returned when a record without an ID is saved.
	ErrMissingID = errors.New("reservation ID is required")
)
