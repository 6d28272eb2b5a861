package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"session-auth/internal/auth"
	"session-auth/internal/config"
	"session-auth/internal/http/handler"
	"session-auth/internal/http/middleware"
	"session-auth/internal/metrics"
	"session-auth/internal/rbac/presets"
	"session-auth/internal/session"
	"session-auth/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus      = "status"
	jsonKeyComponent   = "component"
	statusOK           = "ok"
	statusUnavailable  = "unavailable"
	requestBodyLimit   = "1M"
	healthCheckTimeout = 2 * time.Second
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerDependencies struct {
	Config   *config.Config
	Engine   *auth.Engine
	Sessions *session.Manager
	Metrics  *metrics.Metrics
	// Accounts and Audit are optional; their routes are only mounted when set.
	Accounts handler.AccountStore
	Audit    handler.AuditQuerier
	// HealthChecks are probed by GET /health, keyed by component name.
	HealthChecks map[string]Pinger
}

type Server struct {
	echo     *echo.Echo
	deps     *ServerDependencies
	limiters []*middleware.RateLimiter
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first, so all logs and audit events carry it
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
	globalLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalLimiter.Middleware())

	sessions := middleware.NewSessions(deps.Sessions, middleware.SessionOptions{
		CookieName: deps.Config.Session.CookieName,
		Secret:     []byte(deps.Config.Session.Secret),
		TTL:        deps.Config.Session.TTL,
		Secure:     deps.Config.Session.CookieSecure,
	})
	loginLimiter := middleware.NewLoginRateLimiter(deps.Config.Auth.LoginRateLimit, deps.Config.Auth.LoginRateBurst)

	authHandler := handler.NewAuthHandler(deps.Engine, sessions)

	e.GET("/health", healthCheck(deps.HealthChecks))
	if deps.Metrics != nil {
		e.GET("/metrics", deps.Metrics.Handler)
	}

	authGroup := e.Group("/auth", sessions.Middleware(), middleware.CSRF(), loginLimiter.Middleware())
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/2fa/verify", authHandler.VerifyTwoFactor, middleware.RequirePendingLogin(deps.Engine))
	authGroup.POST("/reset", authHandler.RequestReset)
	authGroup.GET("/reset/:token", authHandler.ShowResetLink)
	authGroup.POST("/reset/:token", authHandler.CompleteReset)

	api := e.Group("/api", sessions.Middleware(), middleware.CSRF(), middleware.RequireLogin(deps.Engine))
	api.GET("/me", authHandler.Me)
	api.GET("/roles", authHandler.Roles,
		middleware.RequireRole(deps.Engine, true, presets.RoleOwner, presets.RoleAdmin, presets.RoleManager))
	if deps.Accounts != nil {
		api.GET("/account", handler.NewAccountHandler(deps.Engine, deps.Accounts, deps.Config.Session.TTL).Account)
	}
	if deps.Audit != nil {
		api.GET("/audit", handler.NewAuditHandler(deps.Audit).List,
			middleware.RequireMinimumRole(deps.Engine, presets.RoleAdmin))
	}

	if deps.Config.Server.EnableProfiling {
		profiling.Register(e,
			sessions.Middleware(),
			middleware.RequireLogin(deps.Engine),
			middleware.RequireRole(deps.Engine, true, presets.RoleOwner, presets.RoleAdmin))
	}

	return &Server{
		echo:     e,
		deps:     deps,
		limiters: []*middleware.RateLimiter{globalLimiter, loginLimiter},
	}
}

// SweepRateLimiters drops rate-limit buckets idle for longer than idle.
func (s *Server) SweepRateLimiters(idle time.Duration) int {
	removed := 0
	for _, rl := range s.limiters {
		removed += rl.Sweep(idle)
	}
	return removed
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(checks map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		defer cancel()

		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				c.Logger().Warnf("health: %s: %v", name, err)
				return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{
					jsonKeyStatus:    statusUnavailable,
					jsonKeyComponent: name,
				})
			}
		}
		return c.JSON(stdhttp.StatusOK, map[string]string{
			jsonKeyStatus: statusOK,
		})
	}
}
