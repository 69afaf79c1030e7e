package notifier

import "errors"

var (
	// ErrNotFound is returned when a notification does not exist.
	ErrNotFound = errors.New("notification not found")

	// ErrTokenNotFound is returned when no notification carries the token.
	ErrTokenNotFound = errors.New("tracking token not found")

	// ErrDuplicateToken is returned when a notification is created with a
	// tracking token that is already in use. Tokens are globally unique.
	ErrDuplicateToken = errors.New("tracking token already in use")

	// ErrMissingID is returned when a notification without an ID is stored.
	ErrMissingID = errors.New("notification ID is required")

	// ErrMissingToken is returned when a notification without a tracking
	// token is stored.
	ErrMissingToken = errors.New("tracking token is required")
)
