package auth

import (
	"context"
	"testing"
	"time"

	"session-auth/internal/domain/user"
	"session-auth/internal/hooks"
	"session-auth/internal/rbac/presets"
	"session-auth/internal/session"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXP"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func codeAt(t *testing.T, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(testSecret, at, totp.ValidateOpts{
		Period:    DefaultTOTPPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func twoFactorSession(t *testing.T, env *testEnv, enabled bool, secret string) *session.Context {
	t.Helper()
	sc := newSession()
	u := &user.User{ID: uuid.New(), Email: "alice@example.com", Role: presets.LevelEditor, TwoFAEnabled: enabled, TwoFASecret: secret}
	require.NoError(t, env.engine.InstallSession(context.Background(), sc, u, false))
	return sc
}

func TestTwoFactor_VerifyTransition(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.engine.now = func() time.Time { return fixedNow }

	var outcomes []bool
	env.hooks.On(hooks.AfterTwoFactorCheck, func(_ context.Context, _ hooks.Event, p hooks.Payload) {
		outcomes = append(outcomes, p.Succeeded)
	})

	sc := twoFactorSession(t, env, true, testSecret)
	require.Equal(t, StateRequired, env.engine.TwoFactorState(sc))

	code := codeAt(t, fixedNow)
	require.NoError(t, env.engine.VerifyCode(context.Background(), sc, code))
	assert.Equal(t, StateVerified, env.engine.TwoFactorState(sc))
	assert.True(t, env.engine.TwoFAVerified(sc))

	require.NoError(t, env.engine.VerifyCode(context.Background(), sc, code))
	assert.Equal(t, StateVerified, env.engine.TwoFactorState(sc))
	assert.Equal(t, []bool{true, true}, outcomes)
}

func TestTwoFactor_VerifiedSessionStillChecksCode(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.engine.now = func() time.Time { return fixedNow }
	sc := twoFactorSession(t, env, true, testSecret)

	current := codeAt(t, fixedNow)
	require.NoError(t, env.engine.VerifyCode(context.Background(), sc, current))
	require.Equal(t, StateVerified, env.engine.TwoFactorState(sc))

	wrong := "000000"
	if wrong == current {
		wrong = "111111"
	}
	for _, code := range []string{wrong, "abcdef", ""} {
		err := env.engine.VerifyCode(context.Background(), sc, code)
		assert.ErrorIs(t, err, ErrVerificationFailed, "code %q", code)
		assert.Equal(t, StateVerified, env.engine.TwoFactorState(sc))
	}
}

func TestTwoFactor_WrongCodeLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.engine.now = func() time.Time { return fixedNow }
	sc := twoFactorSession(t, env, true, testSecret)

	stale := codeAt(t, fixedNow.Add(-10*time.Minute))
	tests := []struct {
		name string
		code string
	}{
		{"stale code", stale},
		{"garbage", "abcdef"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code == codeAt(t, fixedNow) {
				t.Skip("stale code collides with current code")
			}
			err := env.engine.VerifyCode(context.Background(), sc, tt.code)
			assert.ErrorIs(t, err, ErrVerificationFailed)
			assert.Equal(t, StateRequired, env.engine.TwoFactorState(sc))
		})
	}
}

func TestTwoFactor_Skew(t *testing.T) {
	env := newTestEnv(t, Config{TOTPSkew: 1})
	env.engine.now = func() time.Time { return fixedNow }
	sc := twoFactorSession(t, env, true, testSecret)

	previous := codeAt(t, fixedNow.Add(-30*time.Second))
	assert.True(t, env.engine.Verify2FA(sc, previous))
	assert.Equal(t, StateRequired, env.engine.TwoFactorState(sc), "Verify2FA does not transition")
}

func TestTwoFactor_Disabled(t *testing.T) {
	env := newTestEnv(t, Config{})

	tests := []struct {
		name    string
		enabled bool
		secret  string
	}{
		{"flag off", false, testSecret},
		{"no secret", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := twoFactorSession(t, env, tt.enabled, tt.secret)
			assert.Equal(t, StateDisabled, env.engine.TwoFactorState(sc))
			assert.ErrorIs(t, env.engine.VerifyCode(context.Background(), sc, "123456"), ErrTwoFactorDisabled)
		})
	}

	assert.Equal(t, StateDisabled, env.engine.TwoFactorState(newSession()))
	assert.ErrorIs(t, env.engine.VerifyCode(context.Background(), newSession(), "123456"), ErrNoSession)
	assert.ErrorIs(t, env.engine.Set2FAVerified(newSession()), ErrNoSession)
}

func TestTwoFactor_NewLoginRequiresFreshVerification(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.engine.now = func() time.Time { return fixedNow }
	env.store.add(&user.User{Email: "alice@example.com", Role: presets.LevelEditor, TwoFAEnabled: true, TwoFASecret: testSecret}, "pw")

	first := newSession()
	require.NoError(t, env.engine.Login(context.Background(), first, "alice@example.com", "pw"))
	require.NoError(t, env.engine.VerifyCode(context.Background(), first, codeAt(t, fixedNow)))
	require.True(t, env.engine.TwoFAVerified(first))

	require.NoError(t, env.engine.Login(context.Background(), first, "alice@example.com", "pw"))
	assert.False(t, env.engine.TwoFAVerified(first))
	assert.True(t, env.engine.Use2FA(first))
}

func TestGenerateSecret(t *testing.T) {
	env := newTestEnv(t, Config{TOTPIssuer: "Acme"})

	key, err := env.engine.GenerateSecret("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme", key.Issuer())
	assert.Equal(t, "alice@example.com", key.AccountName())
	assert.NotEmpty(t, key.Secret())

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)
	assert.True(t, totp.Validate(code, key.Secret()))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disabled", StateDisabled.String())
	assert.Equal(t, "required", StateRequired.String())
	assert.Equal(t, "verified", StateVerified.String())
	assert.Equal(t, "state(9)", State(9).String())
}
