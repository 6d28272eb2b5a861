package handler

import (
	"context"
	"time"

	"session-auth/internal/audit"
	"session-auth/internal/domain/user"
	"session-auth/internal/session"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionRegenerator moves a request's session to a fresh id.
type SessionRegenerator interface {
	Regenerate(c echo.Context) (*session.Context, error)
}

// AccountStore reads the stored account behind a session.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	// ActiveSessions counts the account's sessions seen since the given time.
	ActiveSessions(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

type AuditQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Event, error)
}
