package auth

import (
	"context"
	"errors"
	"fmt"

	"session-auth/internal/domain/user"
	"session-auth/internal/hooks"
	"session-auth/internal/session"
	apperrors "session-auth/pkg/errors"

	"github.com/google/uuid"
)

// Login authenticates identifier/secret and installs an AuthSession into sc.
//
// When directory login is enabled a successful bind is authoritative and
// skips the local check. Any directory failure falls through to the
// CredentialStore so local-only accounts keep working.
func (e *Engine) Login(ctx context.Context, sc *session.Context, identifier, secret string) error {
	e.hooks.Dispatch(ctx, hooks.BeforeLoginCheck, hooks.Payload{Identifier: identifier, Session: sc, Auth: e})

	err := e.authenticate(ctx, sc, identifier, secret)
	var userID uuid.UUID
	if err == nil {
		userID, _ = e.UserID(sc)
	}
	e.hooks.Dispatch(ctx, hooks.AfterLoginCheck, hooks.Payload{
		Identifier: identifier,
		UserID:     userID,
		Succeeded:  err == nil,
		Session:    sc,
		Auth:       e,
	})
	return err
}

func (e *Engine) authenticate(ctx context.Context, sc *session.Context, identifier, secret string) error {
	if e.cfg.UseDirectory {
		if e.cfg.DirectorySupported && e.directory != nil {
			if handled, err := e.loginDirectory(ctx, sc, identifier, secret); handled {
				return err
			}
		} else {
			e.logger.Warnf(msgDirectoryUnsupported)
		}
	}
	return e.loginLocal(ctx, sc, identifier, secret)
}

func (e *Engine) loginLocal(ctx context.Context, sc *session.Context, identifier, secret string) error {
	u, err := e.store.Verify(ctx, identifier, secret)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInvalidCredentials) {
			e.logger.Errorf(msgLocalVerifyFailed, identifier, err)
			return fmt.Errorf(errVerifyCredentialsFmt, ErrInvalidCredentials, err)
		}
		return ErrInvalidCredentials
	}
	if u == nil {
		return ErrInvalidCredentials
	}
	return e.InstallSession(ctx, sc, u, false)
}

// loginDirectory reports handled=false when the caller should fall back to
// local credentials.
func (e *Engine) loginDirectory(ctx context.Context, sc *session.Context, identifier, secret string) (bool, error) {
	if err := e.directory.Connect(ctx); err != nil {
		e.logger.Warnf(msgDirectoryConnectFailed, err)
		return false, nil
	}
	if err := e.directory.Bind(ctx, identifier, secret); err != nil {
		e.logger.Debugf(msgDirectoryBindFailed, identifier)
		return false, nil
	}

	email := e.directory.CanonicalIdentifier(identifier)
	existing, err := e.store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		e.logger.Errorf(msgLocalVerifyFailed, email, err)
		return true, fmt.Errorf(errVerifyCredentialsFmt, ErrInvalidCredentials, err)
	}

	du, err := e.directory.FetchUser(ctx, identifier)
	if err != nil || du == nil {
		e.logger.Warnf(msgDirectoryFetchFailed, identifier, err)
		return true, ErrInvalidCredentials
	}

	u, err := e.syncDirectoryUser(ctx, email, existing, du)
	if err != nil {
		return true, err
	}
	return true, e.InstallSession(ctx, sc, u, true)
}

// syncDirectoryUser creates the local account on first login and refreshes
// its profile fields on later ones.
func (e *Engine) syncDirectoryUser(ctx context.Context, email string, existing *user.User, du *user.DirectoryUser) (*user.User, error) {
	if existing != nil {
		existing.ApplyDirectory(du)
		if err := e.store.Update(ctx, existing); err != nil {
			e.logger.Warnf(msgDirectoryUpdateFailed, email, err)
		}
		return existing, nil
	}

	if _, err := e.store.Create(ctx, user.NewFromDirectory(email, du)); err != nil {
		e.logger.Errorf(msgDirectoryCreateFailed, email, err)
		return nil, fmt.Errorf(errCreateDirectoryUserFmt, ErrAccountCreation, err)
	}
	created, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		e.logger.Errorf(msgDirectoryCreateFailed, email, err)
		return nil, fmt.Errorf(errFetchCreatedUserFmt, ErrAccountCreation, email, err)
	}
	return created, nil
}
