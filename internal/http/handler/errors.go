package handler

import (
	"errors"
	"net/http"
	"strings"

	"session-auth/internal/auth"
	apperrors "session-auth/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	msgAuthenticationRequired = "authentication required"
	msgVerificationFailed     = "verification failed"
	msgTwoFactorDisabled      = "two-factor authentication is not enabled"
	msgAccessDenied           = "access denied"
	msgInvalidInput           = "invalid input"
	msgInternalError          = "internal server error"
)

var authErrors = []struct {
	err     error
	status  int
	message string
}{
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, msgInvalidCredentials},
	{auth.ErrNoSession, http.StatusUnauthorized, msgAuthenticationRequired},
	{auth.ErrVerificationFailed, http.StatusUnauthorized, msgVerificationFailed},
	{auth.ErrTwoFactorDisabled, http.StatusConflict, msgTwoFactorDisabled},
	{auth.ErrAccessDenied, http.StatusForbidden, msgAccessDenied},
	{auth.ErrInvalidResetToken, http.StatusNotFound, msgResetLinkInvalid},
	{auth.ErrPasswordRequired, http.StatusBadRequest, msgInvalidInput},
}

// MapToPublicError maps an error to a status and a client-safe message.
// Internal details never reach the client.
func MapToPublicError(err error) (int, string) {
	for _, m := range authErrors {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}

	if status, ok := apperrors.HTTPStatus(err); ok {
		return status, strings.ToLower(http.StatusText(status))
	}
	return http.StatusInternalServerError, msgInternalError
}

// RespondWithMappedError responds with a mapped error, preventing information disclosure
func RespondWithMappedError(c echo.Context, err error) error {
	status, msg := MapToPublicError(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("request failed: %v", err)
	}
	return respondError(c, status, msg)
}
