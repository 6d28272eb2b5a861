package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"session-auth/internal/domain/user"
	"session-auth/internal/hooks"
	apperrors "session-auth/pkg/errors"
	"session-auth/pkg/mailer/templates"
)

// IssueResetLink stores a fresh reset token for identifier and mails the
// link. Unknown accounts and accounts over the request limit get the same
// ErrResetNotIssued so callers cannot tell them apart.
func (e *Engine) IssueResetLink(ctx context.Context, identifier string) error {
	err := e.issueResetLink(ctx, identifier)
	e.hooks.Dispatch(ctx, hooks.AfterResetRequest, hooks.Payload{Identifier: identifier, Succeeded: err == nil})
	return err
}

func (e *Engine) issueResetLink(ctx context.Context, identifier string) error {
	u, err := e.store.FindByEmail(ctx, identifier)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			e.logger.Errorf(msgResetLookupFailed, err)
		}
		return ErrResetNotIssued
	}
	if u.PwResetCount >= e.cfg.PwResetLimit {
		e.logger.Debugf(msgResetLimitReached, u.ID)
		return ErrResetNotIssued
	}

	tok, err := e.persistResetToken(ctx, u.Email)
	if err != nil {
		e.logger.Errorf(msgResetNotIssued, u.ID, err)
		return fmt.Errorf(errResetStepFmt, ErrResetNotIssued, resetStepPersist, err)
	}

	body, _, err := e.resetTemplate.Render(templates.PasswordResetContext{
		Company:     e.cfg.Company,
		UserName:    u.FirstName,
		ResetURL:    e.resetURL(tok),
		ExpiryHours: e.cfg.ResetExpiryHours,
	})
	if err != nil {
		e.logger.Errorf(msgResetNotIssued, u.ID, err)
		return fmt.Errorf(errResetStepFmt, ErrResetNotIssued, resetStepRender, err)
	}

	subject := fmt.Sprintf(msgResetSubjectFmt, e.cfg.Company)
	if err := e.mailer.Send(ctx, []string{u.Email}, subject, body, ContextPasswordReset); err != nil {
		e.logger.Errorf(msgResetNotIssued, u.ID, err)
		return fmt.Errorf(errResetStepFmt, ErrResetNotIssued, resetStepSend, err)
	}
	return nil
}

// persistResetToken retries with a new token while the store reports a
// collision.
func (e *Engine) persistResetToken(ctx context.Context, email string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.ResetTokenRetries; attempt++ {
		if attempt > 0 {
			e.logger.Warnf(msgResetTokenCollision, attempt)
		}
		tok, err := e.newToken()
		if err != nil {
			return "", err
		}
		err = e.store.SetResetToken(ctx, email, tok)
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (e *Engine) resetURL(tok string) string {
	base := strings.TrimRight(e.cfg.BaseURL, "/")
	path := "/" + strings.Trim(e.cfg.ResetPath, "/") + "/"
	return base + path + tok
}

// ValidateResetLink reports whether tok belongs to an account.
func (e *Engine) ValidateResetLink(ctx context.Context, tok string) bool {
	if tok == "" {
		return false
	}
	ok, err := e.store.ValidateResetToken(ctx, tok)
	if err != nil {
		e.logger.Warnf(msgResetValidateFailed, err)
		return false
	}
	return ok
}

func (e *Engine) UserByResetLink(ctx context.Context, tok string) (*user.User, error) {
	if tok == "" {
		return nil, ErrInvalidResetToken
	}
	u, err := e.store.FindByResetToken(ctx, tok)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf(errLookupResetTokenFmt, err)
	}
	return u, nil
}

// ChangePassword sets a new secret for the account owning tok and consumes
// the token.
func (e *Engine) ChangePassword(ctx context.Context, newSecret, tok string) error {
	if newSecret == "" {
		return ErrPasswordRequired
	}
	if tok == "" {
		return ErrInvalidResetToken
	}
	if err := e.store.ChangePasswordByToken(ctx, newSecret, tok); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf(errChangePasswordFmt, err)
	}
	return nil
}
