package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20
)

// normalizer is implemented by request bodies that canonicalize their
// fields once decoded.
type normalizer interface {
	normalize()
}

// bindStrictJSON decodes exactly one JSON object with no unknown fields.
func bindStrictJSON(c echo.Context, dst interface{}) error {
	contentType := strings.ToLower(c.Request().Header.Get(echo.HeaderContentType))
	if !strings.HasPrefix(contentType, contentTypeJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	decoder := json.NewDecoder(io.LimitReader(c.Request().Body, maxStrictBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	return nil
}

func (r *LoginRequest) normalize() {
	r.Identifier = strings.ToLower(strings.TrimSpace(r.Identifier))
}

func (r *ResetRequest) normalize() {
	r.Identifier = strings.ToLower(strings.TrimSpace(r.Identifier))
}

// Authenticator apps display codes as "123 456".
func (r *VerifyCodeRequest) normalize() {
	r.Code = strings.ReplaceAll(strings.TrimSpace(r.Code), " ", "")
}
