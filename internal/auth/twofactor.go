package auth

import (
	"context"
	"fmt"

	"session-auth/internal/hooks"
	"session-auth/internal/session"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// State is the two-factor state of a session.
type State int

const (
	// StateDisabled: the principal has no second factor.
	StateDisabled State = iota
	// StateRequired: a code must be verified before the session is trusted.
	StateRequired
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateRequired:
		return "required"
	case StateVerified:
		return "verified"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TwoFactorState reports where sc stands. Sessions without a principal, and
// principals without a secret, are StateDisabled.
func (e *Engine) TwoFactorState(sc *session.Context) State {
	as, ok := e.current(sc)
	if !ok || !as.TwoFAEnabled || as.TwoFASecret == "" {
		return StateDisabled
	}
	if as.TwoFAVerified {
		return StateVerified
	}
	return StateRequired
}

// Verify2FA checks code against the session's secret without changing state.
func (e *Engine) Verify2FA(sc *session.Context, code string) bool {
	as, ok := e.current(sc)
	if !ok || as.TwoFASecret == "" {
		return false
	}
	valid, err := totp.ValidateCustom(code, as.TwoFASecret, e.now().UTC(), e.totpOpts())
	return err == nil && valid
}

// VerifyCode moves a StateRequired session to StateVerified when code is the
// current one-time code. The code is checked in every state; a wrong code
// returns ErrVerificationFailed and leaves the state unchanged.
func (e *Engine) VerifyCode(ctx context.Context, sc *session.Context, code string) error {
	if e.TwoFactorState(sc) == StateDisabled {
		if !e.LoggedIn(sc) {
			return ErrNoSession
		}
		return ErrTwoFactorDisabled
	}

	userID, _ := e.UserID(sc)
	ok := e.Verify2FA(sc, code)
	e.hooks.Dispatch(ctx, hooks.AfterTwoFactorCheck, hooks.Payload{UserID: userID, Succeeded: ok, Session: sc, Auth: e})
	if !ok {
		e.logger.Infof(msgTwoFactorFailed, userID)
		return ErrVerificationFailed
	}
	return e.Set2FAVerified(sc)
}

func (e *Engine) Set2FAVerified(sc *session.Context) error {
	as, ok := e.current(sc)
	if !ok {
		return ErrNoSession
	}
	as.TwoFAVerified = true
	if err := sc.SetUserData(as); err != nil {
		return fmt.Errorf(errWriteSessionFmt, err)
	}
	return nil
}

func (e *Engine) TwoFAVerified(sc *session.Context) bool {
	as, ok := e.current(sc)
	return ok && as.TwoFAVerified
}

// GenerateSecret creates a TOTP key for enrolling accountName.
func (e *Engine) GenerateSecret(accountName string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.cfg.TOTPIssuer,
		AccountName: accountName,
		Period:      DefaultTOTPPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf(errGenerateSecretFmt, err)
	}
	return key, nil
}

func (e *Engine) totpOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    DefaultTOTPPeriod,
		Skew:      e.cfg.TOTPSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}
