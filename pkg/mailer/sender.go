package mailer

import (
	"context"
	"fmt"

	"session-auth/pkg/mailer/providers"
)

// Sender adapts an EmailService to the single-call contract used by the auth
// engine.
type Sender struct {
	service *EmailService
}

func NewSender(service *EmailService) (*Sender, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}
	return &Sender{service: service}, nil
}

// Send delivers an HTML message. contextTag travels to the provider as the
// message tag.
func (s *Sender) Send(ctx context.Context, recipients []string, subject, html, contextTag string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.service.Send(ctx, providers.Message{
		To:      recipients,
		Subject: subject,
		HTML:    html,
		Tag:     contextTag,
	})
	if err != nil {
		return fmt.Errorf(errSendFailedFmt, contextTag, err)
	}
	return nil
}
