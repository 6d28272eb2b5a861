package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"session-auth/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// ContextKeySession holds the request's *session.Context.
	ContextKeySession = "session"

	errOpenSessionFmt       = "open session: %w"
	errRegenerateSessionFmt = "regenerate session: %w"
	errSignCookieFmt        = "sign session cookie: %w"
	msgCommitSessionFailed  = "session commit failed for %s: %v"
	msgSignCookieFailed     = "session cookie signing failed: %v"
)

var ErrNoSessionContext = errors.New("session middleware not installed")

type SessionOptions struct {
	CookieName string
	Secret     []byte
	TTL        time.Duration
	Secure     bool
}

// Sessions carries the session id in an HS256-signed cookie and the session
// values in a session.Store.
type Sessions struct {
	manager *session.Manager
	opts    SessionOptions
}

func NewSessions(manager *session.Manager, opts SessionOptions) *Sessions {
	return &Sessions{manager: manager, opts: opts}
}

// Current returns the session installed by Middleware.
func Current(c echo.Context) (*session.Context, error) {
	sc, ok := c.Get(ContextKeySession).(*session.Context)
	if !ok || sc == nil {
		return nil, ErrNoSessionContext
	}
	return sc, nil
}

// Middleware loads the session named by the request cookie and commits it
// just before the response header is written.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			incoming := s.readCookie(c)

			sc, err := s.manager.Open(c.Request().Context(), incoming)
			if err != nil {
				return fmt.Errorf(errOpenSessionFmt, err)
			}
			c.Set(ContextKeySession, sc)

			c.Response().Before(func() { s.commit(c, incoming) })
			return next(c)
		}
	}
}

// Regenerate moves the request's session to a fresh id.
func (s *Sessions) Regenerate(c echo.Context) (*session.Context, error) {
	sc, err := Current(c)
	if err != nil {
		return nil, err
	}
	next, err := s.manager.Regenerate(c.Request().Context(), sc)
	if err != nil {
		return nil, fmt.Errorf(errRegenerateSessionFmt, err)
	}
	c.Set(ContextKeySession, next)
	return next, nil
}

func (s *Sessions) commit(c echo.Context, incoming string) {
	sc, err := Current(c)
	if err != nil {
		return
	}

	if err := s.manager.Commit(c.Request().Context(), sc); err != nil {
		c.Logger().Errorf(msgCommitSessionFailed, sc.ID(), err)
		return
	}

	switch {
	case sc.Destroyed():
		s.clearCookie(c)
	case sc.Dirty() || incoming != "":
		// re-signing slides the cookie expiry along with the store TTL
		if err := s.writeCookie(c, sc.ID()); err != nil {
			c.Logger().Errorf(msgSignCookieFailed, err)
		}
	}
}

func (s *Sessions) sign(id string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return "", fmt.Errorf(errSignCookieFmt, err)
	}
	return signed, nil
}

// parse returns the session id inside a valid cookie value.
func (s *Sessions) parse(value string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

func (s *Sessions) readCookie(c echo.Context) string {
	cookie, err := c.Cookie(s.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	id, ok := s.parse(cookie.Value)
	if !ok {
		return ""
	}
	return id
}

func (s *Sessions) writeCookie(c echo.Context, id string) error {
	now := time.Now()
	value, err := s.sign(id, now)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(s.opts.TTL),
		MaxAge:   int(s.opts.TTL / time.Second),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
