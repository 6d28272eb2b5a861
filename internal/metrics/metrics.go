// Package metrics keeps in-process request and authentication counters.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"session-auth/internal/hooks"

	"github.com/labstack/echo/v4"
)

// Metrics is safe for concurrent use via atomics and a mutex.
type Metrics struct {
	TotalRequests  int64
	ActiveRequests int64
	TotalErrors    int64
	TotalLatencyMs int64
	MaxLatencyMs   int64

	LoginSuccesses   int64
	LoginFailures    int64
	Logouts          int64
	TwoFactorPassed  int64
	TwoFactorFailed  int64
	ResetLinksIssued int64
	ResetLinksFailed int64

	startTime      time.Time
	mu             sync.Mutex
	endpointCounts map[string]int64
	statusCodes    map[int]int64
}

func New() *Metrics {
	return &Metrics{
		startTime:      time.Now(),
		endpointCounts: make(map[string]int64),
		statusCodes:    make(map[int]int64),
	}
}

// Middleware tracks request count, latency, active connections, and error rates
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.ActiveRequests, 1)
			start := time.Now()

			err := next(c)

			latencyMs := time.Since(start).Milliseconds()
			atomic.AddInt64(&m.ActiveRequests, -1)
			atomic.AddInt64(&m.TotalRequests, 1)
			atomic.AddInt64(&m.TotalLatencyMs, latencyMs)

			// lock-free max
			for {
				current := atomic.LoadInt64(&m.MaxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&m.MaxLatencyMs, current, latencyMs) {
					break
				}
			}

			statusCode := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				statusCode = he.Code
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			endpoint := fmt.Sprintf("%s %s", c.Request().Method, path)

			m.mu.Lock()
			m.endpointCounts[endpoint]++
			m.statusCodes[statusCode]++
			m.mu.Unlock()
			if statusCode >= http.StatusBadRequest {
				atomic.AddInt64(&m.TotalErrors, 1)
			}

			return err
		}
	}
}

// Register counts authentication outcomes from engine events.
func (m *Metrics) Register(r *hooks.Registry) {
	r.On(hooks.AfterLoginCheck, m.observe)
	r.On(hooks.AfterSessionDestroy, m.observe)
	r.On(hooks.AfterTwoFactorCheck, m.observe)
	r.On(hooks.AfterResetRequest, m.observe)
}

func (m *Metrics) observe(_ context.Context, ev hooks.Event, p hooks.Payload) {
	var counter *int64
	switch ev {
	case hooks.AfterLoginCheck:
		counter = pick(p.Succeeded, &m.LoginSuccesses, &m.LoginFailures)
	case hooks.AfterSessionDestroy:
		counter = &m.Logouts
	case hooks.AfterTwoFactorCheck:
		counter = pick(p.Succeeded, &m.TwoFactorPassed, &m.TwoFactorFailed)
	case hooks.AfterResetRequest:
		counter = pick(p.Succeeded, &m.ResetLinksIssued, &m.ResetLinksFailed)
	default:
		return
	}
	atomic.AddInt64(counter, 1)
}

func pick(ok bool, yes, no *int64) *int64 {
	if ok {
		return yes
	}
	return no
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	Auth           AuthSnapshot     `json:"auth"`
}

type AuthSnapshot struct {
	LoginSuccesses   int64 `json:"login_successes"`
	LoginFailures    int64 `json:"login_failures"`
	Logouts          int64 `json:"logouts"`
	TwoFactorPassed  int64 `json:"two_factor_passed"`
	TwoFactorFailed  int64 `json:"two_factor_failed"`
	ResetLinksIssued int64 `json:"reset_links_issued"`
	ResetLinksFailed int64 `json:"reset_links_failed"`
}

func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.TotalRequests)
	errs := atomic.LoadInt64(&m.TotalErrors)
	totalLatency := atomic.LoadInt64(&m.TotalLatencyMs)

	var avgLatency, errorRate float64
	if total > 0 {
		avgLatency = float64(totalLatency) / float64(total)
		errorRate = float64(errs) / float64(total) * 100
	}

	m.mu.Lock()
	endpointCounts := make(map[string]int64, len(m.endpointCounts))
	for k, v := range m.endpointCounts {
		endpointCounts[k] = v
	}
	statusCodes := make(map[int]int64, len(m.statusCodes))
	for k, v := range m.statusCodes {
		statusCodes[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.ActiveRequests),
		TotalErrors:    errs,
		ErrorRate:      errorRate,
		AvgLatencyMs:   avgLatency,
		MaxLatencyMs:   atomic.LoadInt64(&m.MaxLatencyMs),
		UptimeSeconds:  time.Since(m.startTime).Seconds(),
		EndpointCounts: endpointCounts,
		StatusCodes:    statusCodes,
		Auth: AuthSnapshot{
			LoginSuccesses:   atomic.LoadInt64(&m.LoginSuccesses),
			LoginFailures:    atomic.LoadInt64(&m.LoginFailures),
			Logouts:          atomic.LoadInt64(&m.Logouts),
			TwoFactorPassed:  atomic.LoadInt64(&m.TwoFactorPassed),
			TwoFactorFailed:  atomic.LoadInt64(&m.TwoFactorFailed),
			ResetLinksIssued: atomic.LoadInt64(&m.ResetLinksIssued),
			ResetLinksFailed: atomic.LoadInt64(&m.ResetLinksFailed),
		},
	}
}

// Handler serves the snapshot as JSON.
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
