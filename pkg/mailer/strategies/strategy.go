// Package strategies decides which provider, or sequence of providers,
// delivers a message.
package strategies

import (
	"context"
	"errors"
	"fmt"

	"session-auth/pkg/mailer/providers"
)

const errProviderFmt = "%s: %w"

var (
	ErrNoProviders        = errors.New("no email providers configured")
	ErrAllProvidersFailed = errors.New("all email providers failed")
	ErrQuotaExhausted     = errors.New("all email providers exhausted their quota")
)

// Receipt identifies the provider that accepted a message.
type Receipt struct {
	Provider  string
	MessageID string
}

type Strategy interface {
	Send(ctx context.Context, msg *providers.Message, list []providers.Provider) (*Receipt, error)
}

func sendVia(ctx context.Context, p providers.Provider, msg *providers.Message) (*Receipt, error) {
	id, err := p.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf(errProviderFmt, p.Name(), err)
	}
	return &Receipt{Provider: p.Name(), MessageID: id}, nil
}

// tryInOrder attempts each provider starting at start, wrapping around, and
// stops at the first success or when ctx is done.
func tryInOrder(ctx context.Context, msg *providers.Message, list []providers.Provider, start int) (*Receipt, error) {
	var errs []error
	for i := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := list[(start+i)%len(list)]
		if p == nil {
			continue
		}
		receipt, err := sendVia(ctx, p, msg)
		if err == nil {
			return receipt, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoProviders
	}
	return nil, errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...)
}
