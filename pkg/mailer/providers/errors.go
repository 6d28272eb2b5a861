package providers

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	errMarshalFmt   = "%s: encode payload: %w"
	errRequestFmt   = "%s: request: %w"
	errDecodeFmt    = "%s: decode response: %w"
	errAPIStatusFmt = "%s: API returned %d: %s"
)

var ErrAPIKeyRequired = errors.New("api key is required")

// APIError is returned when a provider answers with a non-2xx status.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(errAPIStatusFmt, e.Provider, e.Status, e.Body)
}

// Temporary reports whether retrying elsewhere may succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
