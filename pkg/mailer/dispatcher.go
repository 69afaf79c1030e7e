package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/reservekit/pkg/reservation"
)

// FailureKind classifies why a send did not go through.
type FailureKind string

const (
	FailureNone                    FailureKind = ""
	FailureAddressRejectedByServer FailureKind = "address_rejected_by_server"
	FailureAuthenticationFailed    FailureKind = "authentication_failed"
	FailureTransportError          FailureKind = "transport_error"
	FailureUnknown                 FailureKind = "unknown"
)

// SendResult is the only thing Dispatch ever reports back. Sent is true
// only after the transport call succeeded, never merely after an attempt.
type SendResult struct {
	Sent   bool        `json:"sent"`
	Kind   FailureKind `json:"failure_kind,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// Dispatcher renders lifecycle templates and drives the transport.
type Dispatcher struct {
	sender   EmailSender
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSendTimeout bounds each transport call. A timeout is folded into a
// transport failure; the dispatch worker is never blocked indefinitely.
func WithSendTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		if logger != nil {
			disp.logger = logger
		}
	}
}

// NewDispatcher creates a Dispatcher over the given transport and registry.
func NewDispatcher(sender EmailSender, registry *Registry, opts ...DispatcherOption) (*Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	}

	d := &Dispatcher{
		sender:   sender,
		registry: registry,
		timeout:  15 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch renders the template for kind and sends it to the reservation's
// customer email. All failures are converted to a typed result; nothing is
// raised past this boundary.
func (d *Dispatcher) Dispatch(ctx context.Context, kind MessageKind, r *reservation.Reservation, trackingURL string) (result SendResult) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.LogAttrs(ctx, slog.LevelError, "email dispatch panicked",
				slog.String("reservation_id", r.ID),
				slog.Any("panic", rec))
			result = SendResult{Sent: false, Kind: FailureUnknown, Reason: fmt.Sprintf("dispatch panic: %v", rec)}
		}
	}()

	subject, body, err := d.registry.Render(kind, r, trackingURL)
	if err != nil {
		return SendResult{Sent: false, Kind: FailureUnknown, Reason: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err = d.sender.SendEmail(ctx, SendEmailParams{
		SendTo:  r.CustomerEmail,
		Subject: subject,
		Body:    body,
		Tag:     string(kind),
	})
	if err != nil {
		res := SendResult{Sent: false, Kind: classify(err), Reason: err.Error()}
		d.logger.LogAttrs(ctx, slog.LevelWarn, "email send failed",
			slog.String("reservation_id", r.ID),
			slog.String("message_kind", string(kind)),
			slog.String("failure_kind", string(res.Kind)),
			slog.String("error", err.Error()))
		return res
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "email sent",
		slog.String("reservation_id", r.ID),
		slog.String("message_kind", string(kind)))
	return SendResult{Sent: true}
}

// classify folds a transport error into one of the four failure kinds.
// Timeouts and context cancellation count as transport errors.
func classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrAddressRejected):
		return FailureAddressRejectedByServer
	case errors.Is(err, ErrAuthenticationFailed):
		return FailureAuthenticationFailed
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return FailureTransportError
	default:
		return FailureUnknown
	}
}
