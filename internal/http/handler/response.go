package handler

import (
	"net/http"

	"session-auth/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// respondError writes {"error": message}, plus the request id when one was
// assigned so users can quote it to support.
func respondError(c echo.Context, status int, message string) error {
	body := map[string]string{jsonKeyError: message}
	if id := middleware.GetRequestID(c); id != "" {
		body[jsonKeyRequestID] = id
	}
	return c.JSON(status, body)
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyMessage: message})
}

func handleHTTPError(c echo.Context, err error) error {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return respondError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	msg, _ := he.Message.(string)
	if msg == "" {
		msg = http.StatusText(he.Code)
	}
	return respondError(c, he.Code, msg)
}
