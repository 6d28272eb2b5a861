package auth

import (
	"context"
	"time"

	"session-auth/internal/domain/user"

	"github.com/google/uuid"
)

// CredentialStore persists principals, session records and reset tokens.
// Lookup misses are reported with an error wrapping pkg/errors.ErrNotFound.
type CredentialStore interface {
	// Verify returns the active principal whose secret matches.
	Verify(ctx context.Context, identifier, secret string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, in user.CreateUserInput) (uuid.UUID, error)
	Update(ctx context.Context, u *user.User) error

	RecordSessionActivity(ctx context.Context, userID uuid.UUID, sessionID string, at time.Time) error
	InvalidateSession(ctx context.Context, sessionID string) error

	ValidateResetToken(ctx context.Context, token string) (bool, error)
	FindByResetToken(ctx context.Context, token string) (*user.User, error)
	// SetResetToken stores token for the account and counts the request.
	// A token collision is reported with an error wrapping pkg/errors.ErrConflict.
	SetResetToken(ctx context.Context, email, token string) error
	ChangePasswordByToken(ctx context.Context, newSecret, token string) error
}

// DirectoryProvider is an external identity source such as LDAP.
type DirectoryProvider interface {
	Connect(ctx context.Context) error
	Bind(ctx context.Context, identifier, secret string) error
	// CanonicalIdentifier maps a login name to the email stored locally.
	CanonicalIdentifier(identifier string) string
	FetchUser(ctx context.Context, identifier string) (*user.DirectoryUser, error)
}

type Mailer interface {
	Send(ctx context.Context, recipients []string, subject, html, contextTag string) error
}

// Logger is satisfied by *log.Logger from github.com/labstack/gommon/log.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
