package notifier

import (
	"context"
	"time"
)

// Storage handles notification persistence and retrieval.
type Storage interface {
	// Create stores a new notification. Notifications are created unread;
	// a duplicate tracking token is rejected.
	Create(ctx context.Context, notif Notification) error

	// Get retrieves a single notification by ID.
	Get(ctx context.Context, id string) (*Notification, error)

	// GetByToken retrieves a notification by its tracking token.
	GetByToken(ctx context.Context, token string) (*Notification, error)

	// List returns notifications, newest first.
	List(ctx context.Context, opts ListOptions) ([]Notification, error)

	// CountUnread returns the number of operator-unread notifications.
	CountUnread(ctx context.Context) (int, error)

	// MarkRead sets OperatorRead on the given notifications.
	MarkRead(ctx context.Context, ids ...string) error

	// MarkUnread clears OperatorRead. Deliberate operator override only.
	MarkUnread(ctx context.Context, ids ...string) error

	// MarkReadByReservation sets OperatorRead on every unread notification
	// linked to the reservation.
	MarkReadByReservation(ctx context.Context, reservationID string) error

	// DeleteByReservation removes all notifications linked to the
	// reservation (cascade of the reservation's destruction).
	DeleteByReservation(ctx context.Context, reservationID string) error

	// MarkEmailSent records a successful transport call.
	MarkEmailSent(ctx context.Context, id string, at time.Time) error

	// MarkEmailOpened conditionally records the first open for the token:
	// if the email is not yet marked opened it sets the open fields and
	// returns true; otherwise it changes nothing and returns false. The
	// check-and-set must be atomic with respect to concurrent calls.
	MarkEmailOpened(ctx context.Context, token string, at time.Time, clientIP, userAgent string) (bool, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit         int        // Maximum number of notifications to return (0 = no limit)
	Offset        int        // Number of notifications to skip for pagination
	OnlyUnread    bool       // When true, only return operator-unread notifications
	Categories    []Category // If specified, only return these categories
	ReservationID string     // If specified, only notifications for this reservation
	Since         *time.Time // If specified, only notifications created after this time
}
