package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Manager orchestrates notification persistence and the operator read
// state. The customer-side open flag is owned by the tracking service and
// is never touched here.
type Manager struct {
	storage Storage
	logger  *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new notification manager.
func NewManager(storage Storage, opts ...ManagerOption) *Manager {
	m := &Manager{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create persists a new notification in the unread state, filling in ID
// and creation time when not provided. The tracking token must already be
// issued by the caller.
func (m *Manager) Create(ctx context.Context, notif Notification) (*Notification, error) {
	if notif.ID == "" {
		notif.ID = uuid.New().String()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	if err := m.storage.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	m.logger.LogAttrs(ctx, slog.LevelInfo, "notification created",
		slog.String("notification_id", notif.ID),
		slog.String("category", string(notif.Category)),
		slog.String("priority", string(notif.Priority)),
		slog.String("reservation_id", notif.ReservationID))
	return &notif, nil
}

// View returns a notification and marks it operator-read, the "operator
// opened the detail screen" path.
func (m *Manager) View(ctx context.Context, id string) (*Notification, error) {
	notif, err := m.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !notif.OperatorRead {
		if err := m.storage.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		notif.OperatorRead = true
		now := time.Now()
		notif.OperatorReadAt = &now
	}
	return notif, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Notification, error) {
	return m.storage.Get(ctx, id)
}

func (m *Manager) List(ctx context.Context, opts ListOptions) ([]Notification, error) {
	return m.storage.List(ctx, opts)
}

func (m *Manager) CountUnread(ctx context.Context) (int, error) {
	return m.storage.CountUnread(ctx)
}

func (m *Manager) MarkRead(ctx context.Context, ids ...string) error {
	return m.storage.MarkRead(ctx, ids...)
}

// MarkUnread reverts the operator-read flag. This is a deliberate operator
// override, never an automatic action.
func (m *Manager) MarkUnread(ctx context.Context, ids ...string) error {
	return m.storage.MarkUnread(ctx, ids...)
}

// MarkAllRead marks every unread notification as operator-read. Idempotent.
func (m *Manager) MarkAllRead(ctx context.Context) error {
	unread, err := m.storage.List(ctx, ListOptions{OnlyUnread: true})
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}

	ids := make([]string, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	return m.storage.MarkRead(ctx, ids...)
}

// ClearForReservation bulk-marks a reservation's unread notifications as
// operator-read. Acting on a reservation implies the operator has already
// seen the prior alerts about it.
func (m *Manager) ClearForReservation(ctx context.Context, reservationID string) error {
	if err := m.storage.MarkReadByReservation(ctx, reservationID); err != nil {
		return err
	}
	m.logger.LogAttrs(ctx, slog.LevelDebug, "cleared unread notifications for reservation",
		slog.String("reservation_id", reservationID))
	return nil
}

// CascadeDelete removes every notification linked to a deleted reservation.
func (m *Manager) CascadeDelete(ctx context.Context, reservationID string) error {
	return m.storage.DeleteByReservation(ctx, reservationID)
}

// Storage returns the underlying notification storage.
func (m *Manager) Storage() Storage {
	return m.storage
}
