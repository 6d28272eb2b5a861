package mailer

import (
	"context"
	"errors"
	"testing"

	"session-auth/pkg/mailer/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	name string
	sent []*providers.Message
	err  error
}

func (p *recordingProvider) Name() string { return p.name }

func (p *recordingProvider) Send(_ context.Context, msg *providers.Message) (string, error) {
	p.sent = append(p.sent, msg)
	if p.err != nil {
		return "", p.err
	}
	return "m-1", nil
}

func (p *recordingProvider) Verify(context.Context) error { return p.err }

func newTestSender(t *testing.T, p *recordingProvider) *Sender {
	t.Helper()
	svc, err := NewEmailService(EmailServiceConfig{
		Providers:   []providers.Provider{p},
		DefaultFrom: "no-reply@example.com",
	})
	require.NoError(t, err)
	sender, err := NewSender(svc)
	require.NoError(t, err)
	return sender
}

func TestSenderForwardsTag(t *testing.T) {
	p := &recordingProvider{name: "fake"}
	sender := newTestSender(t, p)

	err := sender.Send(context.Background(), []string{"alice@example.com"}, "Reset", "<p>hi</p>", "password_reset")
	require.NoError(t, err)

	require.Len(t, p.sent, 1)
	assert.Equal(t, "password_reset", p.sent[0].Tag)
	assert.Equal(t, "no-reply@example.com", p.sent[0].From)
	assert.Equal(t, []string{"alice@example.com"}, p.sent[0].To)
}

func TestSenderReportsProviderFailure(t *testing.T) {
	boom := errors.New("boom")
	sender := newTestSender(t, &recordingProvider{name: "fake", err: boom})

	err := sender.Send(context.Background(), []string{"alice@example.com"}, "Reset", "<p>hi</p>", "password_reset")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fake")
}

func TestSenderValidatesMessage(t *testing.T) {
	tests := []struct {
		name    string
		to      []string
		subject string
		html    string
		want    error
	}{
		{"no recipients", nil, "Reset", "<p>hi</p>", ErrNoRecipients},
		{"bad recipient", []string{"not an address"}, "Reset", "<p>hi</p>", ErrInvalidRecipient},
		{"no subject", []string{"a@example.com"}, "", "<p>hi</p>", ErrSubjectRequired},
		{"no body", []string{"a@example.com"}, "Reset", "", ErrBodyRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingProvider{name: "fake"}
			err := newTestSender(t, p).Send(context.Background(), tt.to, tt.subject, tt.html, "password_reset")
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, p.sent)
		})
	}
}

func TestSenderHonoursCancelledContext(t *testing.T) {
	p := &recordingProvider{name: "fake"}
	sender := newTestSender(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sender.Send(ctx, []string{"alice@example.com"}, "Reset", "<p>hi</p>", "password_reset")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.sent)
}

func TestNewEmailServiceValidation(t *testing.T) {
	_, err := NewEmailService(EmailServiceConfig{})
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = NewEmailService(EmailServiceConfig{Providers: []providers.Provider{nil}})
	assert.ErrorIs(t, err, ErrNilProvider)

	_, err = NewEmailService(EmailServiceConfig{
		Providers:   []providers.Provider{&recordingProvider{name: "fake"}},
		DefaultFrom: "nope",
	})
	assert.ErrorIs(t, err, ErrInvalidFrom)

	_, err = NewSender(nil)
	assert.ErrorIs(t, err, ErrServiceRequired)
}

func TestEmailServiceVerify(t *testing.T) {
	bad := errors.New("unauthorized")
	svc, err := NewEmailService(EmailServiceConfig{
		Providers: []providers.Provider{
			&recordingProvider{name: "ok"},
			&recordingProvider{name: "broken", err: bad},
		},
	})
	require.NoError(t, err)

	got := svc.Verify(context.Background())
	assert.NoError(t, got["ok"])
	assert.ErrorIs(t, got["broken"], bad)
}
