package strategies

import (
	"context"

	"session-auth/pkg/mailer/providers"
)

// SingleProviderStrategy only ever uses the first provider.
type SingleProviderStrategy struct{}

func (s *SingleProviderStrategy) Send(ctx context.Context, msg *providers.Message, list []providers.Provider) (*Receipt, error) {
	if len(list) == 0 || list[0] == nil {
		return nil, ErrNoProviders
	}
	return sendVia(ctx, list[0], msg)
}
