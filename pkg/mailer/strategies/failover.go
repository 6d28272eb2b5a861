package strategies

import (
	"context"

	"session-auth/pkg/mailer/providers"
)

// FailoverStrategy tries providers in configured order until one accepts.
type FailoverStrategy struct{}

func (s *FailoverStrategy) Send(ctx context.Context, msg *providers.Message, list []providers.Provider) (*Receipt, error) {
	if len(list) == 0 {
		return nil, ErrNoProviders
	}
	return tryInOrder(ctx, msg, list, 0)
}
