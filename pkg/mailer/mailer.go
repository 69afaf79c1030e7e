package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
// Bodies are plain text; the tracking URL is embedded in the body by the
// template, and invisible open-detection is handled by the tracking
// endpoints rather than markup.
type SendEmailParams struct {
	SendTo  string `json:"send_to"`       // Email address of the recipient
	Subject string `json:"subject"`       // Subject of the email
	Body    string `json:"body"`          // Plain-text body of the email
	Tag     string `json:"tag,omitempty"` // Optional
}

// Validate checks the minimum shape required to hand the email to any
// transport. Full address vetting is the mailcheck pipeline's job.
func (p SendEmailParams) Validate() error {
	if strings.TrimSpace(p.SendTo) == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidConfig)
	}
	if _, err := mail.ParseAddress(p.SendTo); err != nil {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidConfig)
	}
	if strings.TrimSpace(p.Subject) == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(p.Body) == "" {
		return fmt.Errorf("%w: Body is required", ErrInvalidConfig)
	}
	return nil
}
