package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"session-auth/internal/domain/user"
	"session-auth/internal/hooks"
	"session-auth/internal/rbac/presets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueResetLink_UpToLimit(t *testing.T) {
	env := newTestEnv(t, Config{PwResetLimit: 5})
	env.store.add(&user.User{FirstName: "Alice", Email: "alice@example.com", Role: presets.LevelEditor}, "pw")

	for i := 1; i <= 5; i++ {
		require.NoError(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"), "request %d", i)
	}
	assert.Len(t, env.mailer.sent, 5)

	err := env.engine.IssueResetLink(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrResetNotIssued)
	assert.Len(t, env.mailer.sent, 5, "no mail beyond the limit")
}

func TestIssueResetLink_DefaultLimit(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.store.add(&user.User{Email: "alice@example.com", PwResetCount: DefaultPwResetLimit - 1}, "pw")

	require.NoError(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"))
	assert.ErrorIs(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"), ErrResetNotIssued)
}

func TestIssueResetLink_UnknownAccount(t *testing.T) {
	env := newTestEnv(t, Config{})

	err := env.engine.IssueResetLink(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrResetNotIssued)
	assert.Empty(t, env.mailer.sent)
	assert.Empty(t, env.store.tokens)
}

func TestIssueResetLink_MailContents(t *testing.T) {
	env := newTestEnv(t, Config{BaseURL: "https://app.example.com/", Company: "Acme"})
	env.store.add(&user.User{FirstName: "Alice", Email: "alice@example.com"}, "pw")

	require.NoError(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"))
	require.Len(t, env.mailer.sent, 1)
	require.Len(t, env.store.tokens, 1)

	var tok string
	for k := range env.store.tokens {
		tok = k
	}
	assert.Len(t, tok, 32)
	assert.Equal(t, strings.ToLower(tok), tok)

	mail := env.mailer.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, mail.to)
	assert.Equal(t, ContextPasswordReset, mail.tag)
	assert.Equal(t, "Acme password reset", mail.subject)
	assert.Contains(t, mail.html, "https://app.example.com/auth/reset/"+tok)
	assert.Contains(t, mail.html, "Hello Alice,")
}

func TestIssueResetLink_RetriesOnCollision(t *testing.T) {
	env := newTestEnv(t, Config{ResetTokenRetries: 2})
	env.store.add(&user.User{Email: "alice@example.com"}, "pw")

	tokens := []string{"first", "second", "third"}
	env.engine.newToken = func() (string, error) {
		tok := tokens[0]
		tokens = tokens[1:]
		return tok, nil
	}
	env.store.conflictNext = 2

	require.NoError(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"))
	_, ok := env.store.tokens["third"]
	assert.True(t, ok)
}

func TestIssueResetLink_GivesUpAfterRetries(t *testing.T) {
	env := newTestEnv(t, Config{ResetTokenRetries: 1})
	env.store.add(&user.User{Email: "alice@example.com"}, "pw")
	env.store.conflictNext = 5

	err := env.engine.IssueResetLink(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrResetNotIssued)
	assert.Equal(t, 3, env.store.conflictNext, "two attempts made")
	assert.Empty(t, env.mailer.sent)
}

func TestIssueResetLink_FailsWhenPersistOrSendFails(t *testing.T) {
	t.Run("persist", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.store.add(&user.User{Email: "alice@example.com"}, "pw")
		env.store.setTokenErr = errors.New("db down")

		assert.ErrorIs(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"), ErrResetNotIssued)
		assert.Empty(t, env.mailer.sent)
	})

	t.Run("send", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.store.add(&user.User{Email: "alice@example.com"}, "pw")
		env.mailer.err = errors.New("smtp down")

		assert.ErrorIs(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"), ErrResetNotIssued)
	})
}

func TestIssueResetLink_EmitsEvent(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.store.add(&user.User{Email: "alice@example.com"}, "pw")

	var outcomes []bool
	env.hooks.On(hooks.AfterResetRequest, func(_ context.Context, _ hooks.Event, p hooks.Payload) {
		outcomes = append(outcomes, p.Succeeded)
	})

	_ = env.engine.IssueResetLink(context.Background(), "alice@example.com")
	_ = env.engine.IssueResetLink(context.Background(), "ghost@example.com")
	assert.Equal(t, []bool{true, false}, outcomes)
}

func TestResetTokenLifecycle(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.store.add(&user.User{Email: "alice@example.com", Role: presets.LevelEditor}, "old")
	env.engine.newToken = func() (string, error) { return "tok123", nil }

	require.NoError(t, env.engine.IssueResetLink(context.Background(), "alice@example.com"))

	assert.True(t, env.engine.ValidateResetLink(context.Background(), "tok123"))
	assert.False(t, env.engine.ValidateResetLink(context.Background(), "other"))
	assert.False(t, env.engine.ValidateResetLink(context.Background(), ""))

	u, err := env.engine.UserByResetLink(context.Background(), "tok123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = env.engine.UserByResetLink(context.Background(), "other")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	assert.ErrorIs(t, env.engine.ChangePassword(context.Background(), "", "tok123"), ErrPasswordRequired)
	require.NoError(t, env.engine.ChangePassword(context.Background(), "new", "tok123"))
	assert.ErrorIs(t, env.engine.ChangePassword(context.Background(), "newer", "tok123"), ErrInvalidResetToken)

	sc := newSession()
	require.NoError(t, env.engine.Login(context.Background(), sc, "alice@example.com", "new"))
	assert.Equal(t, 0, env.store.users["alice@example.com"].PwResetCount)
}
