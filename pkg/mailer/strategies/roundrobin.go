package strategies

import (
	"context"
	"sync/atomic"

	"session-auth/pkg/mailer/providers"
)

// RoundRobinStrategy rotates the starting provider on every call and falls
// through to the others on failure.
type RoundRobinStrategy struct {
	next atomic.Uint64
}

func (s *RoundRobinStrategy) Send(ctx context.Context, msg *providers.Message, list []providers.Provider) (*Receipt, error) {
	if len(list) == 0 {
		return nil, ErrNoProviders
	}
	start := int((s.next.Add(1) - 1) % uint64(len(list)))
	return tryInOrder(ctx, msg, list, start)
}
