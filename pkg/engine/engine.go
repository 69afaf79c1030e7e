package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/reservekit/pkg/mailcheck"
	"github.com/dmitrymomot/reservekit/pkg/mailer"
	"github.com/dmitrymomot/reservekit/pkg/notifier"
	"github.com/dmitrymomot/reservekit/pkg/outbox"
	"github.com/dmitrymomot/reservekit/pkg/reservation"
	"github.com/dmitrymomot/reservekit/pkg/tracking"
)

// Engine is the notification factory. Writes go through Save/Delete, which
// enqueue transition events; Handle is the outbox worker callback that
// performs validation, email dispatch and notification persistence.
type Engine struct {
	store         reservation.Store
	enqueuer      *outbox.Enqueuer
	guard         outbox.IdempotencyGuard
	validator     *mailcheck.Validator
	dispatcher    *mailer.Dispatcher
	notifications *notifier.Manager
	baseURL       string
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseURL sets the public base URL embedded into tracking links.
func WithBaseURL(u string) Option {
	return func(e *Engine) {
		if u != "" {
			e.baseURL = u
		}
	}
}

// WithEngineLogger sets the logger for the Engine.
func WithEngineLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine. All dependencies are required.
func New(
	store reservation.Store,
	enqueuer *outbox.Enqueuer,
	guard outbox.IdempotencyGuard,
	validator *mailcheck.Validator,
	dispatcher *mailer.Dispatcher,
	notifications *notifier.Manager,
	opts ...Option,
) (*Engine, error) {
	switch {
	case store == nil:
		return nil, fmt.Errorf("%w: reservation store is required", ErrInvalidConfig)
	case enqueuer == nil:
		return nil, fmt.Errorf("%w: outbox enqueuer is required", ErrInvalidConfig)
	case guard == nil:
		return nil, fmt.Errorf("%w: idempotency guard is required", ErrInvalidConfig)
	case validator == nil:
		return nil, fmt.Errorf("%w: address validator is required", ErrInvalidConfig)
	case dispatcher == nil:
		return nil, fmt.Errorf("%w: email dispatcher is required", ErrInvalidConfig)
	case notifications == nil:
		return nil, fmt.Errorf("%w: notification manager is required", ErrInvalidConfig)
	}

	e := &Engine{
		store:         store,
		enqueuer:      enqueuer,
		guard:         guard,
		validator:     validator,
		dispatcher:    dispatcher,
		notifications: notifications,
		baseURL:       "http://localhost:8080",
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Save writes the reservation and enqueues the resulting transition event.
// The write always succeeds independently of the notification pipeline;
// enqueue failures are logged and swallowed.
func (e *Engine) Save(ctx context.Context, r *reservation.Reservation) (reservation.Transition, error) {
	tr, err := e.store.Save(ctx, r)
	if err != nil {
		return tr, err
	}
	if tr.Kind == reservation.TransitionUnchanged {
		return tr, nil
	}

	snap, err := e.store.Get(ctx, r.ID)
	if err != nil {
		snap = r
	}
	if err := e.enqueuer.Enqueue(ctx, outbox.NewEvent(snap, tr)); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "failed to enqueue transition event",
			slog.String("reservation_id", r.ID),
			slog.String("kind", string(tr.Kind)),
			slog.String("error", err.Error()))
	}
	return tr, nil
}

// Delete removes the reservation and enqueues a deletion event carrying the
// final snapshot.
func (e *Engine) Delete(ctx context.Context, id string) error {
	snap, err := e.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	tr := reservation.Transition{Kind: reservation.TransitionDeleted, From: snap.Status}
	if err := e.enqueuer.Enqueue(ctx, outbox.NewEvent(snap, tr)); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "failed to enqueue deletion event",
			slog.String("reservation_id", id),
			slog.String("error", err.Error()))
	}
	return nil
}

// Handle processes one claimed outbox event. It is the outbox.Handler wired
// into the worker. Redelivered events are skipped via the idempotency guard;
// the signature is recorded only after the handler succeeds, so a transient
// failure (say, notification storage briefly down) stays retryable instead
// of being swallowed as a redelivery. The email send carries its own
// guard marker inside sendLifecycleEmail, which keeps a retried event from
// mailing the customer twice.
func (e *Engine) Handle(ctx context.Context, event *outbox.Event) error {
	if event.Kind == reservation.TransitionUnchanged {
		return nil
	}

	done, err := e.guard.Delivered(ctx, event.Signature)
	if err != nil {
		return fmt.Errorf("failed to check delivery signature: %w", err)
	}
	if done {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "skipping redelivered transition event",
			slog.String("reservation_id", event.ReservationID),
			slog.String("signature", event.Signature))
		return nil
	}

	switch event.Kind {
	case reservation.TransitionCreated:
		err = e.handleCreated(ctx, event)
	case reservation.TransitionStatusChanged:
		err = e.handleStatusChanged(ctx, event)
	case reservation.TransitionDeleted:
		err = e.handleDeleted(ctx, event)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	// Recording failures are logged, not returned: the work is done and a
	// redelivery would at worst duplicate the operator notice.
	if _, err := e.guard.FirstDelivery(ctx, event.Signature); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "failed to record delivery signature",
			slog.String("reservation_id", event.ReservationID),
			slog.String("signature", event.Signature),
			slog.String("error", err.Error()))
	}
	return nil
}

// emailOutcome is what a send attempt reports back to the decision table.
type emailOutcome struct {
	token      string
	sent       bool
	reason     string
	suggestion string
}

// sendLifecycleEmail validates the address and dispatches the template.
// The token is issued before the send so the tracking URL can be embedded
// in the body. Validation failure is terminal for the attempt: no retry
// against the same address. A non-empty dedupKey scopes a guard marker to
// the send itself, so retrying the surrounding event after a later failure
// reports success here instead of mailing the customer again.
func (e *Engine) sendLifecycleEmail(ctx context.Context, kind mailer.MessageKind, r *reservation.Reservation, dedupKey string) emailOutcome {
	out := emailOutcome{token: tracking.IssueToken()}

	if dedupKey != "" {
		sent, err := e.guard.Delivered(ctx, dedupKey)
		if err != nil {
			e.logger.LogAttrs(ctx, slog.LevelWarn, "failed to check send marker, proceeding with send",
				slog.String("reservation_id", r.ID),
				slog.String("error", err.Error()))
		}
		if sent {
			out.sent = true
			return out
		}
	}

	if r.CustomerEmail == "" {
		out.reason = "no email address provided"
		return out
	}

	check := e.validator.Validate(ctx, r.CustomerEmail)
	if !check.Valid {
		out.reason = check.Reason
		out.suggestion = check.Suggestion
		e.logger.LogAttrs(ctx, slog.LevelWarn, "customer email rejected by validator",
			slog.String("reservation_id", r.ID),
			slog.String("reason", check.Reason))
		return out
	}

	trackingURL := tracking.URL(e.baseURL, out.token, tracking.ActionView)
	result := e.dispatcher.Dispatch(ctx, kind, r, trackingURL)
	out.sent = result.Sent
	if !result.Sent {
		out.reason = fmt.Sprintf("%s: %s", result.Kind, result.Reason)
		return out
	}

	if dedupKey != "" {
		if _, err := e.guard.FirstDelivery(ctx, dedupKey); err != nil {
			e.logger.LogAttrs(ctx, slog.LevelError, "failed to record send marker",
				slog.String("reservation_id", r.ID),
				slog.String("error", err.Error()))
		}
	}
	return out
}

// sendKey is the guard marker scoped to one event's email send.
func sendKey(event *outbox.Event) string {
	return event.Signature + ":email"
}

func (e *Engine) handleCreated(ctx context.Context, event *outbox.Event) error {
	r := event.Reservation
	if r == nil {
		return nil
	}

	out := e.sendLifecycleEmail(ctx, mailer.MessagePending, r, sendKey(event))
	if out.sent {
		return e.createNotification(ctx, notifier.Notification{
			Title: "New Reservation!",
			Body: fmt.Sprintf("New reservation from %s for %d guests on %s at %s. Email: %s",
				r.CustomerName, r.Guests, r.Date, r.Time, r.CustomerEmail),
			Category:      notifier.CategoryNewReservation,
			Priority:      notifier.PriorityNormal,
			ReservationID: r.ID,
		}, out)
	}

	return e.createNotification(ctx, emailFailedNotification(r, out), out)
}

func (e *Engine) handleStatusChanged(ctx context.Context, event *outbox.Event) error {
	r := event.Reservation
	if r == nil {
		return nil
	}

	// Acting on a reservation implies the operator has seen the prior
	// alerts about it.
	if event.To.Terminal() {
		if err := e.notifications.ClearForReservation(ctx, r.ID); err != nil {
			e.logger.LogAttrs(ctx, slog.LevelError, "failed to clear unread notifications",
				slog.String("reservation_id", r.ID),
				slog.String("error", err.Error()))
		}
	}

	switch event.To {
	case reservation.StatusConfirmed:
		out := e.sendLifecycleEmail(ctx, mailer.MessageConfirmed, r, sendKey(event))
		if out.sent {
			return e.createNotification(ctx, notifier.Notification{
				Title: "Reservation Confirmed",
				Body: fmt.Sprintf("Reservation from %s CONFIRMED for %s at %s. Confirmation email sent.",
					r.CustomerName, r.Date, r.Time),
				Category:      notifier.CategoryEmailSuccess,
				Priority:      notifier.PriorityNormal,
				ReservationID: r.ID,
			}, out)
		}
		return e.createNotification(ctx, emailFailedNotification(r, out), out)

	case reservation.StatusCancelled:
		out := e.sendLifecycleEmail(ctx, mailer.MessageCancelled, r, sendKey(event))
		if out.sent {
			return e.createNotification(ctx, notifier.Notification{
				Title:         "Reservation Cancelled",
				Body:          fmt.Sprintf("Reservation from %s CANCELLED. Cancellation email sent.", r.CustomerName),
				Category:      notifier.CategoryCancelled,
				Priority:      notifier.PriorityNormal,
				ReservationID: r.ID,
			}, out)
		}
		return e.createNotification(ctx, emailFailedNotification(r, out), out)

	case reservation.StatusCompleted:
		return e.createNotification(ctx, notifier.Notification{
			Title:         "Reservation Completed",
			Body:          fmt.Sprintf("Reservation from %s marked as completed.", r.CustomerName),
			Category:      notifier.CategoryInfo,
			Priority:      notifier.PriorityInfo,
			ReservationID: r.ID,
		}, emailOutcome{token: tracking.IssueToken()})

	default:
		return e.createNotification(ctx, notifier.Notification{
			Title:         "Reservation Updated",
			Body:          fmt.Sprintf("Reservation from %s updated: %s.", r.CustomerName, event.To),
			Category:      notifier.CategoryInfo,
			Priority:      notifier.PriorityInfo,
			ReservationID: r.ID,
		}, emailOutcome{token: tracking.IssueToken()})
	}
}

// handleDeleted cascades linked notifications away, makes one best-effort
// cancellation send and records a detached deletion notice. The notice
// deliberately carries no reservation reference: the record is gone and the
// notification must outlive it.
func (e *Engine) handleDeleted(ctx context.Context, event *outbox.Event) error {
	if event.ReservationID != "" {
		if err := e.notifications.CascadeDelete(ctx, event.ReservationID); err != nil {
			e.logger.LogAttrs(ctx, slog.LevelError, "failed to cascade-delete notifications",
				slog.String("reservation_id", event.ReservationID),
				slog.String("error", err.Error()))
		}
	}

	r := event.Reservation
	if r == nil {
		return nil
	}

	out := e.sendLifecycleEmail(ctx, mailer.MessageCancelled, r, sendKey(event))
	if out.sent {
		return e.createNotification(ctx, notifier.Notification{
			Title: "Reservation Deleted",
			Body: fmt.Sprintf("Reservation from %s (%d guests) deleted for %s. Cancellation email sent.",
				r.CustomerName, r.Guests, r.Date),
			Category: notifier.CategoryCancelled,
			Priority: notifier.PriorityNormal,
		}, out)
	}

	notif := emailFailedNotification(r, out)
	notif.ReservationID = ""
	return e.createNotification(ctx, notif, out)
}

// SendReminder makes a best-effort reminder send for an upcoming
// reservation and records the outcome as a notification.
func (e *Engine) SendReminder(ctx context.Context, reservationID string) error {
	r, err := e.store.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	// Direct call, not a redelivered event: no send marker needed.
	out := e.sendLifecycleEmail(ctx, mailer.MessageReminder, r, "")
	if out.sent {
		return e.createNotification(ctx, notifier.Notification{
			Title:         "Reservation Reminder Sent",
			Body:          fmt.Sprintf("Reminder sent to %s for %s at %s.", r.CustomerName, r.Date, r.Time),
			Category:      notifier.CategoryInfo,
			Priority:      notifier.PriorityInfo,
			ReservationID: r.ID,
		}, out)
	}
	return e.createNotification(ctx, emailFailedNotification(r, out), out)
}

// createNotification stamps the tracking token and email-sent fields onto
// the notification and persists it unread.
func (e *Engine) createNotification(ctx context.Context, notif notifier.Notification, out emailOutcome) error {
	notif.TrackingToken = out.token
	if out.sent {
		notif.EmailSent = true
		now := time.Now()
		notif.EmailSentAt = &now
	}

	if _, err := e.notifications.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}
	return nil
}

// emailFailedNotification is the urgent human-follow-up alert produced when
// the email could not be attempted or did not go through.
func emailFailedNotification(r *reservation.Reservation, out emailOutcome) notifier.Notification {
	body := fmt.Sprintf("Email to %s for reservation from %s could not be sent (%s). Please phone the customer at %s.",
		orNotProvided(r.CustomerEmail), r.CustomerName, out.reason, orNotProvided(r.CustomerPhone))
	if out.suggestion != "" {
		body += fmt.Sprintf(" Did they mean %s?", out.suggestion)
	}
	return notifier.Notification{
		Title:         "Email Failed",
		Body:          body,
		Category:      notifier.CategoryEmailFailed,
		Priority:      notifier.PriorityUrgent,
		ReservationID: r.ID,
	}
}

func orNotProvided(s string) string {
	if s == "" {
		return "not provided"
	}
	return s
}
