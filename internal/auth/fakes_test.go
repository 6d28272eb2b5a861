package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"session-auth/internal/domain/user"
	"session-auth/internal/hooks"
	"session-auth/internal/rbac"
	"session-auth/internal/rbac/presets"
	"session-auth/internal/session"
	apperrors "session-auth/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*user.User
	passwords map[string]string
	tokens    map[string]string // token -> email
	activity  map[string]uuid.UUID
	invalid   []string

	createErr    error
	activityErr  error
	conflictNext int
	setTokenErr  error
	verifyCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*user.User),
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		activity:  make(map[string]uuid.UUID),
	}
}

func (s *fakeStore) add(u *user.User, password string) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.Email] = u
	s.passwords[u.Email] = password
	return u
}

func (s *fakeStore) Verify(_ context.Context, identifier, secret string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyCalls++
	u, ok := s.users[identifier]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	if s.passwords[identifier] != secret || secret == "" {
		return nil, apperrors.InvalidCredentials()
	}
	c := *u
	return &c, nil
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	c := *u
	return &c, nil
}

func (s *fakeStore) Create(_ context.Context, in user.CreateUserInput) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	u := &user.User{
		ID:         uuid.New(),
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Role:       in.Role,
		Department: in.Department,
		JobTitle:   in.JobTitle,
		JobLevel:   in.JobLevel,
		Settings:   in.Settings,
		Source:     in.Source,
		Status:     in.Status,
	}
	s.users[in.Email] = u
	return u.ID, nil
}

func (s *fakeStore) Update(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.Email] = &c
	return nil
}

func (s *fakeStore) RecordSessionActivity(_ context.Context, userID uuid.UUID, sessionID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activityErr != nil {
		return s.activityErr
	}
	s.activity[sessionID] = userID
	return nil
}

func (s *fakeStore) InvalidateSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalid = append(s.invalid, sessionID)
	delete(s.activity, sessionID)
	return nil
}

func (s *fakeStore) ValidateResetToken(_ context.Context, tok string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[tok]
	return ok, nil
}

func (s *fakeStore) FindByResetToken(_ context.Context, tok string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[tok]
	if !ok {
		return nil, apperrors.NotFound("reset token")
	}
	c := *s.users[email]
	return &c, nil
}

func (s *fakeStore) SetResetToken(_ context.Context, email, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setTokenErr != nil {
		return s.setTokenErr
	}
	if s.conflictNext > 0 {
		s.conflictNext--
		return apperrors.Conflict("reset token")
	}
	u, ok := s.users[email]
	if !ok {
		return apperrors.NotFound("user")
	}
	s.tokens[tok] = email
	u.PwResetCount++
	return nil
}

func (s *fakeStore) ChangePasswordByToken(_ context.Context, newSecret, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[tok]
	if !ok {
		return apperrors.NotFound("reset token")
	}
	s.passwords[email] = newSecret
	s.users[email].PwResetCount = 0
	delete(s.tokens, tok)
	return nil
}

type fakeDirectory struct {
	connectErr error
	accounts   map[string]string // login -> password
	profiles   map[string]*user.DirectoryUser
	domain     string
	binds      int
}

func (d *fakeDirectory) Connect(context.Context) error { return d.connectErr }

func (d *fakeDirectory) Bind(_ context.Context, identifier, secret string) error {
	d.binds++
	if pw, ok := d.accounts[identifier]; ok && pw == secret {
		return nil
	}
	return errors.New("ldap: invalid credentials")
}

func (d *fakeDirectory) CanonicalIdentifier(identifier string) string {
	return identifier + "@" + d.domain
}

func (d *fakeDirectory) FetchUser(_ context.Context, identifier string) (*user.DirectoryUser, error) {
	du, ok := d.profiles[identifier]
	if !ok {
		return nil, apperrors.NotFound("directory user")
	}
	return du, nil
}

type sentMail struct {
	to      []string
	subject string
	html    string
	tag     string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, html, tag string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html, tag: tag})
	return nil
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) { l.record("DEBUG", format, args...) }
func (l *recordingLogger) Infof(format string, args ...interface{})  { l.record("INFO", format, args...) }
func (l *recordingLogger) Warnf(format string, args ...interface{})  { l.record("WARN", format, args...) }
func (l *recordingLogger) Errorf(format string, args ...interface{}) { l.record("ERROR", format, args...) }

type testEnv struct {
	engine *Engine
	store  *fakeStore
	dir    *fakeDirectory
	mailer *fakeMailer
	hooks  *hooks.Registry
	logger *recordingLogger
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://app.example.com"
	}
	if cfg.Company == "" {
		cfg.Company = "Acme"
	}

	logger := &recordingLogger{}
	env := &testEnv{
		store: newFakeStore(),
		dir: &fakeDirectory{
			accounts: make(map[string]string),
			profiles: make(map[string]*user.DirectoryUser),
			domain:   "example.com",
		},
		mailer: &fakeMailer{},
		hooks:  hooks.New(logger),
		logger: logger,
	}

	engine, err := NewEngine(cfg, Dependencies{
		Roles:     rbac.MustNew(presets.Workspace()).WithLogger(logger),
		Store:     env.store,
		Directory: env.dir,
		Mailer:    env.mailer,
		Hooks:     env.hooks,
		Logger:    logger,
	})
	require.NoError(t, err)
	env.engine = engine
	return env
}

func newSession() *session.Context {
	return session.NewContext(session.NewID(), nil)
}

// installAs puts a session with the given global and project roles into a new context.
func (env *testEnv) installAs(t *testing.T, role rbac.Role, projectRole string) *session.Context {
	t.Helper()
	sc := newSession()
	require.NoError(t, sc.SetUserData(&session.AuthSession{
		ID:          uuid.New(),
		Role:        role,
		ProjectRole: projectRole,
	}))
	return sc
}
