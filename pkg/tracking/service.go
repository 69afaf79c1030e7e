package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reservekit/pkg/notifier"
	"github.com/dmitrymomot/reservekit/pkg/reservation"
)

// Action selects what a tracking resolution returns.
type Action string

const (
	// ActionPixel is the default: an invisible 1x1 image for open
	// detection when embedded in email bodies.
	ActionPixel Action = ""
	// ActionView returns a read-only snapshot of the reservation.
	ActionView Action = "view"
	// ActionConfirm returns an action-confirmation view.
	ActionConfirm Action = "confirm"
)

// ErrTokenNotFound is returned when no notification carries the token.
// Alias of the storage sentinel so callers can match either.
var ErrTokenNotFound = notifier.ErrTokenNotFound

// Client identifies the requester of a tracking resolution.
type Client struct {
	IP        string
	UserAgent string
}

// Resolution is the outcome of resolving a tracking URL.
type Resolution struct {
	Action       Action
	FirstOpen    bool
	Notification *notifier.Notification
	// Reservation is the read-only snapshot for ActionView/ActionConfirm.
	// Nil when the linked reservation no longer exists or the notification
	// was never linked to one.
	Reservation *reservation.Reservation
}

// Service issues tracking tokens and resolves tracking URLs.
type Service struct {
	storage notifier.Storage
	store   reservation.Store
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the Service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a tracking Service over the notification storage and
// the reservation store.
func NewService(storage notifier.Storage, store reservation.Store, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueToken produces a process-unique opaque token. Called once per
// notification at creation time; a token is never reissued.
func IssueToken() string {
	return uuid.New().String()
}

// URL builds the tracking URL embedded into an email body.
func URL(baseURL, token string, action Action) string {
	base := strings.TrimRight(baseURL, "/")
	if action == ActionPixel {
		return fmt.Sprintf("%s/track/%s/", base, token)
	}
	return fmt.Sprintf("%s/track/%s/%s/", base, token, action)
}

// Resolve looks up the token, records the first open and returns the view
// the action asks for. Unknown tokens are terminal: ErrTokenNotFound, no
// state mutation.
func (s *Service) Resolve(ctx context.Context, token string, action Action, client Client) (*Resolution, error) {
	first, err := s.storage.MarkEmailOpened(ctx, token, time.Now(), client.IP, client.UserAgent)
	if err != nil {
		if errors.Is(err, notifier.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to record email open: %w", err)
	}

	if first {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "email opened by client",
			slog.String("tracking_token", token),
			slog.String("client_ip", client.IP))
	}

	notif, err := s.storage.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification for token: %w", err)
	}

	res := &Resolution{
		Action:       normalizeAction(action),
		FirstOpen:    first,
		Notification: notif,
	}

	// The reservation snapshot is best-effort: the record may already be
	// gone for detached or cascading notifications.
	if res.Action != ActionPixel && notif.ReservationID != "" {
		if r, err := s.store.Get(ctx, notif.ReservationID); err == nil {
			res.Reservation = r
		}
	}

	return res, nil
}

// normalizeAction maps any unknown or missing action to the pixel.
func normalizeAction(a Action) Action {
	switch a {
	case ActionView, ActionConfirm:
		return a
	default:
		return ActionPixel
	}
}
