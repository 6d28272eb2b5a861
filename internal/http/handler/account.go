package handler

import (
	"net/http"
	"time"

	"session-auth/internal/auth"
	"session-auth/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

const (
	accountSourceLocal     = "local"
	accountSourceDirectory = "directory"
)

type AccountHandler struct {
	engine   *auth.Engine
	accounts AccountStore
	// window is how far back a session counts as active.
	window time.Duration
	now    func() time.Time
}

func NewAccountHandler(engine *auth.Engine, accounts AccountStore, window time.Duration) *AccountHandler {
	return &AccountHandler{engine: engine, accounts: accounts, window: window, now: time.Now}
}

type AccountResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Source         string `json:"source"`
	Department     string `json:"department,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	ActiveSessions int    `json:"active_sessions"`
}

// Account returns the stored profile of the signed-in principal, which may
// be fresher than the copy installed in the session.
func (h *AccountHandler) Account(c echo.Context) error {
	sc, err := middleware.Current(c)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgSessionUnavailable)
	}
	id, ok := h.engine.UserID(sc)
	if !ok {
		return RespondWithMappedError(c, auth.ErrNoSession)
	}

	ctx := c.Request().Context()
	u, err := h.accounts.GetByID(ctx, id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	active, err := h.accounts.ActiveSessions(ctx, id, h.now().Add(-h.window))
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	source := accountSourceLocal
	if u.IsDirectory() {
		source = accountSourceDirectory
	}
	return c.JSON(http.StatusOK, &AccountResponse{
		ID:             u.ID.String(),
		FullName:       u.FullName(),
		Email:          u.Email,
		Source:         source,
		Department:     u.Department,
		JobTitle:       u.JobTitle,
		ActiveSessions: active,
	})
}
