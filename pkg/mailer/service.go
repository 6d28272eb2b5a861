// Package mailer sends transactional email through one or more HTTP
// providers chosen by a delivery strategy.
package mailer

import (
	"context"
	"net/mail"

	"session-auth/pkg/mailer/providers"
	"session-auth/pkg/mailer/strategies"
	"session-auth/pkg/mailer/templates"
)

type EmailServiceConfig struct {
	Providers []providers.Provider
	// Strategy defaults to SingleProviderStrategy.
	Strategy    strategies.Strategy
	DefaultFrom string
}

// EmailService is immutable after construction and safe for concurrent use.
type EmailService struct {
	providers   []providers.Provider
	strategy    strategies.Strategy
	defaultFrom string
}

func NewEmailService(cfg EmailServiceConfig) (*EmailService, error) {
	if len(cfg.Providers) == 0 {
		return nil, ErrProviderRequired
	}
	for _, p := range cfg.Providers {
		if p == nil {
			return nil, ErrNilProvider
		}
	}
	if cfg.DefaultFrom != "" {
		if _, err := mail.ParseAddress(cfg.DefaultFrom); err != nil {
			return nil, ErrInvalidFrom
		}
	}

	strategy := cfg.Strategy
	if strategy == nil {
		strategy = &strategies.SingleProviderStrategy{}
	}

	list := make([]providers.Provider, len(cfg.Providers))
	copy(list, cfg.Providers)
	return &EmailService{providers: list, strategy: strategy, defaultFrom: cfg.DefaultFrom}, nil
}

// Send validates msg, fills in the default sender and hands it to the
// strategy. msg itself is not modified.
func (s *EmailService) Send(ctx context.Context, msg providers.Message) (*strategies.Receipt, error) {
	if msg.From == "" {
		msg.From = s.defaultFrom
	}
	if err := validate(&msg); err != nil {
		return nil, err
	}
	return s.strategy.Send(ctx, &msg, s.providers)
}

// Verify asks every provider to check its credentials. The map is keyed by
// provider name; a nil value means the provider is usable.
func (s *EmailService) Verify(ctx context.Context) map[string]error {
	out := make(map[string]error, len(s.providers))
	for _, p := range s.providers {
		out[p.Name()] = p.Verify(ctx)
	}
	return out
}

func validate(msg *providers.Message) error {
	if _, err := mail.ParseAddress(msg.From); err != nil {
		return ErrInvalidFrom
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range msg.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return errInvalidRecipient(to)
		}
	}
	if msg.Subject == "" {
		return ErrSubjectRequired
	}
	if msg.HTML == "" {
		return ErrBodyRequired
	}
	return nil
}

func PasswordResetTemplate() (*templates.TypedTemplate[templates.PasswordResetContext], error) {
	return templates.PasswordResetTemplate()
}
