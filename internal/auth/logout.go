package auth

import (
	"context"

	"session-auth/internal/hooks"
	"session-auth/internal/session"
)

// Logout ends the session in sc. Without an authenticated session it does
// nothing.
func (e *Engine) Logout(ctx context.Context, sc *session.Context) error {
	userID, ok := e.UserID(sc)
	if !ok {
		return nil
	}

	if err := e.store.InvalidateSession(ctx, sc.ID()); err != nil {
		e.logger.Warnf(msgInvalidateSessionFailed, sc.ID(), err)
	}

	sc.Destroy()
	for _, key := range e.hooks.FilterKeysToDestroy(session.DefaultKeysToDestroy()) {
		sc.Delete(key)
	}
	// The principal never survives a logout, whatever the filters returned.
	sc.Delete(session.KeyUserData)

	e.hooks.Dispatch(ctx, hooks.AfterSessionDestroy, hooks.Payload{UserID: userID, Succeeded: true, Session: sc, Auth: e})
	return nil
}
