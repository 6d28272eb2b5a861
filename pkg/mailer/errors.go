package mailer

import (
	"errors"
	"fmt"
)

const (
	errInvalidRecipientFmt = "invalid recipient %q"
	errSendFailedFmt       = "mailer: %s: %w"
)

var (
	ErrProviderRequired = errors.New("at least one provider is required")
	ErrNilProvider      = errors.New("provider cannot be nil")
	ErrInvalidFrom      = errors.New("invalid sender address")
	ErrServiceRequired  = errors.New("email service is required")
	ErrNoRecipients     = errors.New("at least one recipient is required")
	ErrSubjectRequired  = errors.New("subject is required")
	ErrBodyRequired     = errors.New("html body is required")
	ErrInvalidRecipient = errors.New("invalid recipient")
)

func errInvalidRecipient(addr string) error {
	return fmt.Errorf("%w: "+errInvalidRecipientFmt, ErrInvalidRecipient, addr)
}
