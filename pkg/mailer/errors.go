package mailer

import "errors"

var (
	ErrFailedToSendEmail    = errors.New("mailer.errors.failed_to_send_email")
	ErrInvalidConfig        = errors.New("mailer.errors.invalid_config")
	ErrAddressRejected      = errors.New("mailer.errors.address_rejected_by_server")
	ErrAuthenticationFailed = errors.New("mailer.errors.authentication_failed")
	ErrTransport            = errors.New("mailer.errors.transport_error")
	ErrUnknownMessageKind   = errors.New("mailer.errors.unknown_message_kind")
)
