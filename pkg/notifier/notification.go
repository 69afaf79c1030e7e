package notifier

import "time"

// Category classifies what the notification is about.
type Category string

const (
	CategoryNewReservation Category = "new_reservation"
	CategoryEmailFailed    Category = "email_failed"
	CategoryEmailSuccess   Category = "email_success"
	CategoryConfirmed      Category = "confirmed"
	CategoryCancelled      Category = "cancelled"
	CategoryInfo           Category = "info"
)

// Priority represents the notification priority level.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityNormal Priority = "normal"
	PriorityInfo   Priority = "info"
)

// Notification is an internal alert about a reservation event, optionally
// paired with an outbound customer email whose delivery and opening are
// tracked on the record itself.
type Notification struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category Category `json:"category"`
	Priority Priority `json:"priority"`

	// ReservationID is a weak reference: the notification's lifetime is
	// bounded by the reservation's. Empty for detached notices (deletion).
	ReservationID string `json:"reservation_id,omitempty"`

	// TrackingToken is opaque, globally unique and immutable once issued.
	TrackingToken string `json:"tracking_token"`

	EmailSent   bool       `json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`

	EmailOpened     bool       `json:"email_opened_by_client"`
	EmailOpenedAt   *time.Time `json:"email_opened_at,omitempty"`
	ClientIP        string     `json:"client_ip,omitempty"`
	ClientUserAgent string     `json:"client_user_agent,omitempty"`

	OperatorRead   bool       `json:"operator_read"`
	OperatorReadAt *time.Time `json:"operator_read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
