package strategies

import (
	"context"
	"errors"
	"sync"
	"testing"

	"session-auth/pkg/mailer/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
	err  error

	mu    sync.Mutex
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Send(context.Context, *providers.Message) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.name + "-id", nil
}

func (p *stubProvider) Verify(context.Context) error { return p.err }

func (p *stubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var msg = &providers.Message{To: []string{"a@example.com"}, From: "b@example.com", Subject: "s", HTML: "h"}

func TestStrategiesRejectEmptyList(t *testing.T) {
	for name, s := range map[string]Strategy{
		"single":     &SingleProviderStrategy{},
		"failover":   &FailoverStrategy{},
		"roundrobin": &RoundRobinStrategy{},
		"priority":   NewPriorityStrategy(nil),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Send(context.Background(), msg, nil)
			assert.ErrorIs(t, err, ErrNoProviders)
		})
	}
}

func TestSingleProviderUsesFirstOnly(t *testing.T) {
	down := errors.New("down")
	a := &stubProvider{name: "a", err: down}
	b := &stubProvider{name: "b"}

	_, err := (&SingleProviderStrategy{}).Send(context.Background(), msg, []providers.Provider{a, b})
	assert.ErrorIs(t, err, down)
	assert.Equal(t, 0, b.Calls())
}

func TestFailoverFallsThrough(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("down")}
	b := &stubProvider{name: "b"}

	receipt, err := (&FailoverStrategy{}).Send(context.Background(), msg, []providers.Provider{a, b})
	require.NoError(t, err)
	assert.Equal(t, "b", receipt.Provider)
	assert.Equal(t, "b-id", receipt.MessageID)
}

func TestFailoverJoinsErrors(t *testing.T) {
	errA, errB := errors.New("a down"), errors.New("b down")
	list := []providers.Provider{&stubProvider{name: "a", err: errA}, &stubProvider{name: "b", err: errB}}

	_, err := (&FailoverStrategy{}).Send(context.Background(), msg, list)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestFailoverStopsOnCancelledContext(t *testing.T) {
	a := &stubProvider{name: "a"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&FailoverStrategy{}).Send(ctx, msg, []providers.Provider{a})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, a.Calls())
}

func TestRoundRobinRotates(t *testing.T) {
	a, b := &stubProvider{name: "a"}, &stubProvider{name: "b"}
	s := &RoundRobinStrategy{}
	list := []providers.Provider{a, b}

	var got []string
	for i := 0; i < 4; i++ {
		receipt, err := s.Send(context.Background(), msg, list)
		require.NoError(t, err)
		got = append(got, receipt.Provider)
	}
	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
}

func TestPriorityRespectsQuota(t *testing.T) {
	a, b := &stubProvider{name: "a"}, &stubProvider{name: "b"}
	s := NewPriorityStrategy(map[string]int{"a": 2, "b": 1})
	list := []providers.Provider{a, b}

	var got []string
	for i := 0; i < 3; i++ {
		receipt, err := s.Send(context.Background(), msg, list)
		require.NoError(t, err)
		got = append(got, receipt.Provider)
	}
	assert.Equal(t, []string{"a", "a", "b"}, got)

	_, err := s.Send(context.Background(), msg, list)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, s.Usage())

	s.ResetUsage()
	receipt, err := s.Send(context.Background(), msg, list)
	require.NoError(t, err)
	assert.Equal(t, "a", receipt.Provider)
}

func TestPriorityFailureDoesNotConsumeQuota(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("down")}
	b := &stubProvider{name: "b"}
	s := NewPriorityStrategy(map[string]int{"a": 1})

	receipt, err := s.Send(context.Background(), msg, []providers.Provider{a, b})
	require.NoError(t, err)
	assert.Equal(t, "b", receipt.Provider)
	assert.Equal(t, map[string]int{"b": 1}, s.Usage())
}
