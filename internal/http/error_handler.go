package http

import (
	"errors"
	"fmt"
	"net/http"

	"session-auth/internal/http/handler"
	"session-auth/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

const requestIDUnknown = "unknown"

// CustomHTTPErrorHandler renders every error that escapes a handler or
// middleware as {"error", "request_id"}. Domain errors go through the same
// mapping the handlers use; 5xx details are logged, never returned.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var message string

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		code, message = handler.MapToPublicError(err)
	}

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = requestIDUnknown
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("internal_server_error request_id=%s status=%d error=%v", requestID, code, err)
		message = http.StatusText(http.StatusInternalServerError)
	} else {
		c.Logger().Warnf("client_error request_id=%s status=%d error=%v", requestID, code, err)
	}

	if err := c.JSON(code, map[string]interface{}{
		"error":      message,
		"request_id": requestID,
	}); err != nil {
		c.Logger().Error(err)
	}
}
