package middleware

import (
	"errors"
	"net/http"

	"session-auth/internal/auth"
	"session-auth/internal/rbac"

	"github.com/labstack/echo/v4"
)

const (
	msgAuthenticationRequired = "authentication required"
	msgTwoFactorRequired      = "two-factor verification required"
	msgAccessDenied           = "access denied"
)

// RequireLogin rejects requests without a principal, and principals that
// still owe a two-factor code.
func RequireLogin(engine *auth.Engine) echo.MiddlewareFunc {
	return requireLogin(engine, false)
}

// RequirePendingLogin admits principals whether or not their second factor
// has been verified. It guards the verification endpoint itself.
func RequirePendingLogin(engine *auth.Engine) echo.MiddlewareFunc {
	return requireLogin(engine, true)
}

func requireLogin(engine *auth.Engine, allowPending bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sc, err := Current(c)
			if err != nil || !engine.LoggedIn(sc) {
				return echo.NewHTTPError(http.StatusUnauthorized, msgAuthenticationRequired)
			}
			if !allowPending && engine.TwoFactorState(sc) == auth.StateRequired {
				return echo.NewHTTPError(http.StatusUnauthorized, msgTwoFactorRequired)
			}
			return next(c)
		}
	}
}

// RequireRole admits sessions whose resolved role is one of roles. Role
// mismatches become 403; a missing session becomes 401.
func RequireRole(engine *auth.Engine, forceGlobal bool, roles ...rbac.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sc, err := Current(c)
			if err != nil || !engine.LoggedIn(sc) {
				return echo.NewHTTPError(http.StatusUnauthorized, msgAuthenticationRequired)
			}
			if err := engine.RequireRole(sc, forceGlobal, roles...); err != nil {
				if errors.Is(err, auth.ErrAccessDenied) {
					return echo.NewHTTPError(http.StatusForbidden, msgAccessDenied).SetInternal(err)
				}
				return err
			}
			return next(c)
		}
	}
}

// RequireMinimumRole admits sessions whose resolved role ranks at least
// required.
func RequireMinimumRole(engine *auth.Engine, required rbac.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sc, err := Current(c)
			if err != nil || !engine.LoggedIn(sc) {
				return echo.NewHTTPError(http.StatusUnauthorized, msgAuthenticationRequired)
			}
			if !engine.AtLeast(sc, required, false) {
				return echo.NewHTTPError(http.StatusForbidden, msgAccessDenied)
			}
			return next(c)
		}
	}
}
