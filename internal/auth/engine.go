// Package auth is the authentication and authorization decision engine:
// login across identity providers, session installation and teardown,
// role resolution and the two-factor state machine.
package auth

import (
	"errors"
	"fmt"
	"time"

	"session-auth/internal/hooks"
	"session-auth/internal/rbac"
	"session-auth/internal/session"
	"session-auth/pkg/mailer"
	"session-auth/pkg/mailer/templates"
	"session-auth/pkg/token"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type Config struct {
	// UseDirectory enables login against the DirectoryProvider.
	UseDirectory bool
	// DirectorySupported is false when the runtime was built or configured
	// without a usable directory client.
	DirectorySupported bool

	PwResetLimit      int
	ResetTokenLength  int
	ResetTokenRetries int
	ResetExpiryHours  int
	BaseURL           string
	ResetPath         string
	Company           string

	TOTPIssuer string
	TOTPSkew   uint
}

func (c Config) withDefaults() Config {
	if c.PwResetLimit <= 0 {
		c.PwResetLimit = DefaultPwResetLimit
	}
	if c.ResetTokenLength <= 0 {
		c.ResetTokenLength = token.ResetLength
	}
	if c.ResetTokenRetries < 0 {
		c.ResetTokenRetries = 0
	}
	if c.ResetPath == "" {
		c.ResetPath = DefaultResetPath
	}
	if c.Company == "" {
		c.Company = DefaultCompany
	}
	if c.TOTPIssuer == "" {
		c.TOTPIssuer = DefaultTOTPIssuer
	}
	return c
}

// Dependencies are the collaborators an Engine calls into. Directory is
// optional; Hooks and Logger get defaults when nil.
type Dependencies struct {
	Roles     *rbac.Hierarchy
	Store     CredentialStore
	Directory DirectoryProvider
	Mailer    Mailer
	Hooks     *hooks.Registry
	Logger    Logger
}

// Engine holds no per-session state. Every call receives the request's
// session.Context, so one Engine serves all requests.
type Engine struct {
	cfg       Config
	roles     *rbac.Hierarchy
	store     CredentialStore
	directory DirectoryProvider
	mailer    Mailer
	hooks     *hooks.Registry
	logger    Logger

	resetTemplate *templates.TypedTemplate[templates.PasswordResetContext]
	newToken      func() (string, error)
	now           func() time.Time
}

func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if deps.Roles == nil {
		return nil, errors.New(errRolesRequired)
	}
	if deps.Store == nil {
		return nil, errors.New(errCredentialStoreRequired)
	}
	if deps.Mailer == nil {
		return nil, errors.New(errMailerRequired)
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.New("auth")
	}
	registry := deps.Hooks
	if registry == nil {
		registry = hooks.New(logger)
	}

	tmpl, err := mailer.PasswordResetTemplate()
	if err != nil {
		return nil, fmt.Errorf(errResetTemplateFmt, err)
	}

	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:           cfg,
		roles:         deps.Roles,
		store:         deps.Store,
		directory:     deps.Directory,
		mailer:        deps.Mailer,
		hooks:         registry,
		logger:        logger,
		resetTemplate: tmpl,
		now:           time.Now,
	}
	e.newToken = func() (string, error) {
		return token.Generate(token.ResetAlphabet, e.cfg.ResetTokenLength)
	}
	return e, nil
}

func (e *Engine) Hooks() *hooks.Registry {
	return e.hooks
}

func (e *Engine) Roles() *rbac.Hierarchy {
	return e.roles
}

// current returns the session's principal. A destroyed session has none.
func (e *Engine) current(sc *session.Context) (*session.AuthSession, bool) {
	if sc == nil || sc.Destroyed() {
		return nil, false
	}
	return sc.UserData()
}

func (e *Engine) LoggedIn(sc *session.Context) bool {
	_, ok := e.current(sc)
	return ok
}

func (e *Engine) SessionID(sc *session.Context) string {
	if sc == nil {
		return ""
	}
	return sc.ID()
}

func (e *Engine) UserID(sc *session.Context) (uuid.UUID, bool) {
	as, ok := e.current(sc)
	if !ok {
		return uuid.Nil, false
	}
	return as.ID, true
}

func (e *Engine) ClientID(sc *session.Context) (uuid.UUID, bool) {
	as, ok := e.current(sc)
	if !ok {
		return uuid.Nil, false
	}
	return as.ClientID, true
}

// CurrentUser returns a copy of the installed AuthSession.
func (e *Engine) CurrentUser(sc *session.Context) (*session.AuthSession, bool) {
	return e.current(sc)
}

func (e *Engine) Use2FA(sc *session.Context) bool {
	as, ok := e.current(sc)
	return ok && as.TwoFAEnabled
}
