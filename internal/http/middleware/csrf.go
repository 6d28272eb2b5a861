package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"session-auth/internal/session"

	"github.com/labstack/echo/v4"
)

const (
	csrfTokenLength = 32
	// CSRFHeaderName carries the token on unsafe requests.
	CSRFHeaderName = "X-CSRF-Token"
	// KeyCSRFToken is the session key holding the synchronizer token.
	KeyCSRFToken = "csrfToken"

	msgCSRFInvalidSession = "invalid session context"
	msgCSRFNotFound       = "CSRF token not found"
	msgCSRFRequired       = "CSRF token required"
	msgCSRFInvalid        = "invalid CSRF token"
)

// generateToken generates a cryptographically secure random token
func generateToken() (string, error) {
	bytes := make([]byte, csrfTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// CSRFToken returns the session's synchronizer token, creating it on first
// use. It moves with the session, so a regenerated id keeps its token.
func CSRFToken(sc *session.Context) (string, error) {
	var tok string
	if found, err := sc.Get(KeyCSRFToken, &tok); err == nil && found && tok != "" {
		return tok, nil
	}

	tok, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := sc.Set(KeyCSRFToken, tok); err != nil {
		return "", err
	}
	return tok, nil
}

// CSRF rejects unsafe requests from authenticated sessions that do not echo
// the session token in CSRFHeaderName. Anonymous sessions are not checked.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			sc, err := Current(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": msgCSRFInvalidSession})
			}
			if !sc.Has(session.KeyUserData) {
				return next(c)
			}

			var expected string
			if found, err := sc.Get(KeyCSRFToken, &expected); err != nil || !found || expected == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": msgCSRFNotFound})
			}

			provided := c.Request().Header.Get(CSRFHeaderName)
			if provided == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": msgCSRFRequired})
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				return c.JSON(http.StatusForbidden, map[string]string{"error": msgCSRFInvalid})
			}

			return next(c)
		}
	}
}
