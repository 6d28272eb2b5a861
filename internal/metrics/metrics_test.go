package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"session-auth/internal/hooks"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCounters(t *testing.T) {
	m := New()
	reg := hooks.New(nil)
	m.Register(reg)
	ctx := context.Background()

	reg.Dispatch(ctx, hooks.AfterLoginCheck, hooks.Payload{Succeeded: true})
	reg.Dispatch(ctx, hooks.AfterLoginCheck, hooks.Payload{Succeeded: false})
	reg.Dispatch(ctx, hooks.AfterLoginCheck, hooks.Payload{Succeeded: false})
	reg.Dispatch(ctx, hooks.AfterSessionDestroy, hooks.Payload{Succeeded: true})
	reg.Dispatch(ctx, hooks.AfterTwoFactorCheck, hooks.Payload{Succeeded: true})
	reg.Dispatch(ctx, hooks.AfterResetRequest, hooks.Payload{Succeeded: false})
	reg.Dispatch(ctx, hooks.BeforeLoginCheck, hooks.Payload{})

	got := m.Snapshot().Auth
	assert.Equal(t, AuthSnapshot{
		LoginSuccesses:   1,
		LoginFailures:    2,
		Logouts:          1,
		TwoFactorPassed:  1,
		ResetLinksFailed: 1,
	}, got)
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/denied", func(c echo.Context) error { return echo.NewHTTPError(http.StatusForbidden) })
	e.GET("/metrics", m.Handler)

	for _, path := range []string{"/ok", "/ok", "/denied"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
	assert.Equal(t, int64(2), snap.EndpointCounts["GET /ok"])
	assert.Equal(t, int64(1), snap.StatusCodes[http.StatusForbidden])
}
