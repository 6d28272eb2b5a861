package strategies

import (
	"context"
	"errors"
	"sync"

	"session-auth/pkg/mailer/providers"
)

// PriorityStrategy walks providers in order, skipping any that reached its
// send quota. Providers without a quota are unlimited. Only successful sends
// count against a quota.
type PriorityStrategy struct {
	mu     sync.Mutex
	limits map[string]int
	usage  map[string]int
}

func NewPriorityStrategy(limits map[string]int) *PriorityStrategy {
	copied := make(map[string]int, len(limits))
	for name, n := range limits {
		copied[name] = n
	}
	return &PriorityStrategy{limits: copied, usage: make(map[string]int)}
}

// reserve claims one unit of quota, so concurrent sends cannot overshoot.
func (s *PriorityStrategy) reserve(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit, ok := s.limits[name]; ok && s.usage[name] >= limit {
		return false
	}
	s.usage[name]++
	return true
}

func (s *PriorityStrategy) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usage[name] <= 1 {
		delete(s.usage, name)
		return
	}
	s.usage[name]--
}

func (s *PriorityStrategy) Send(ctx context.Context, msg *providers.Message, list []providers.Provider) (*Receipt, error) {
	if len(list) == 0 {
		return nil, ErrNoProviders
	}

	var errs []error
	for _, p := range list {
		if p == nil || !s.reserve(p.Name()) {
			continue
		}
		receipt, err := sendVia(ctx, p, msg)
		if err == nil {
			return receipt, nil
		}
		s.release(p.Name())
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrQuotaExhausted
	}
	return nil, errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...)
}

// ResetUsage clears the counters, typically from a daily ticker.
func (s *PriorityStrategy) ResetUsage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = make(map[string]int)
}

func (s *PriorityStrategy) Usage() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.usage))
	for name, n := range s.usage {
		out[name] = n
	}
	return out
}
