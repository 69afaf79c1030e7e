package mailer

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/reservekit/pkg/reservation"
)

// MessageKind selects which lifecycle template is rendered.
type MessageKind string

const (
	MessagePending   MessageKind = "pending"
	MessageConfirmed MessageKind = "confirmed"
	MessageCancelled MessageKind = "cancelled"
	MessageReminder  MessageKind = "reminder"
)

// TemplateFunc renders a subject and plain-text body for a reservation.
// The tracking URL is already resolved by the caller.
type TemplateFunc func(id Identity, r *reservation.Reservation, trackingURL string) (subject, body string)

// Registry maps message kinds to template functions. The default set covers
// the four lifecycle emails; Register replaces or adds kinds.
type Registry struct {
	identity  Identity
	templates map[MessageKind]TemplateFunc
}

// NewRegistry creates a Registry with the default lifecycle templates.
func NewRegistry(identity Identity) *Registry {
	return &Registry{
		identity: identity,
		templates: map[MessageKind]TemplateFunc{
			MessagePending:   pendingTemplate,
			MessageConfirmed: confirmedTemplate,
			MessageCancelled: cancelledTemplate,
			MessageReminder:  reminderTemplate,
		},
	}
}

// Register installs a template for a kind, replacing any existing one.
func (reg *Registry) Register(kind MessageKind, fn TemplateFunc) {
	if fn != nil {
		reg.templates[kind] = fn
	}
}

// Render produces the subject and body for the given kind.
func (reg *Registry) Render(kind MessageKind, r *reservation.Reservation, trackingURL string) (string, string, error) {
	fn, ok := reg.templates[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownMessageKind, kind)
	}
	subject, body := fn(reg.identity, r, trackingURL)
	return subject, body, nil
}

func details(r *reservation.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Name: %s\n", r.CustomerName)
	fmt.Fprintf(&b, "- Party size: %d guests\n", r.Guests)
	fmt.Fprintf(&b, "- Date: %s\n", r.Date)
	fmt.Fprintf(&b, "- Time: %s\n", r.Time)
	return b.String()
}

func signature(id Identity) string {
	return fmt.Sprintf("Kind regards,\nThe %s team\nAddress: %s\nPhone: %s\nWebsite: %s\n",
		id.Name, id.Address, id.Phone, id.Website)
}

func pendingTemplate(id Identity, r *reservation.Reservation, trackingURL string) (string, string) {
	subject := fmt.Sprintf("Reservation Request Received - %s", id.Name)
	body := fmt.Sprintf(`Dear %s,

Thank you for your reservation request at %s!

Your request details:
%s- Status: being processed

Track your request: %s

Your request is under review. We will notify you as soon as it is confirmed.

%s`, r.CustomerName, id.Name, details(r), trackingURL, signature(id))
	return subject, body
}

func confirmedTemplate(id Identity, r *reservation.Reservation, trackingURL string) (string, string) {
	subject := fmt.Sprintf("Reservation Confirmed - %s", id.Name)
	body := fmt.Sprintf(`Dear %s,

Great news! Your reservation has been CONFIRMED.

Reservation details:
%s- Status: confirmed

View your reservation: %s

If anything comes up, call us at %s.

We look forward to welcoming you at %s!

%s`, r.CustomerName, details(r), trackingURL, id.Phone, id.Name, signature(id))
	return subject, body
}

func cancelledTemplate(id Identity, r *reservation.Reservation, trackingURL string) (string, string) {
	subject := fmt.Sprintf("Reservation Cancelled - %s", id.Name)
	body := fmt.Sprintf(`Dear %s,

We are sorry to inform you that your reservation has been cancelled.

Cancelled reservation details:
%s
View details: %s

If you have any questions, call us at %s.

We hope to welcome you soon!

%s`, r.CustomerName, details(r), trackingURL, id.Phone, signature(id))
	return subject, body
}

func reminderTemplate(id Identity, r *reservation.Reservation, trackingURL string) (string, string) {
	subject := fmt.Sprintf("Reminder - Your reservation today - %s", id.Name)
	body := fmt.Sprintf(`Dear %s,

A friendly reminder of your reservation today at %s.

Your reservation:
%s
View your reservation: %s

If your plans change, please call us at %s.

See you soon!

%s`, r.CustomerName, id.Name, details(r), trackingURL, id.Phone, signature(id))
	return subject, body
}
