// Package hooks provides typed extension points around authentication:
// fire-and-forget events and value-transforming filters, each addressed by
// an enumerated identifier.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"session-auth/internal/session"

	"github.com/google/uuid"
)

// Event identifies a notification.
type Event int

const (
	BeforeLoginCheck Event = iota + 1
	AfterLoginCheck
	AfterSessionDestroy
	AfterTwoFactorCheck
	AfterResetRequest
)

func (e Event) String() string {
	switch e {
	case BeforeLoginCheck:
		return "beforeLoginCheck"
	case AfterLoginCheck:
		return "afterLoginCheck"
	case AfterSessionDestroy:
		return "afterSessionDestroy"
	case AfterTwoFactorCheck:
		return "afterTwoFactorCheck"
	case AfterResetRequest:
		return "afterResetRequest"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Filter identifies a value-transforming pipeline.
type Filter int

const (
	UserSessionVars Filter = iota + 1
	SessionVarsToDestroy
)

func (f Filter) String() string {
	switch f {
	case UserSessionVars:
		return "user_session_vars"
	case SessionVarsToDestroy:
		return "sessions_vars_to_destroy"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

// Authenticator is the read side of the engine handed to observers.
type Authenticator interface {
	LoggedIn(sc *session.Context) bool
	UserID(sc *session.Context) (uuid.UUID, bool)
}

// Payload travels with an event. Secrets are never included.
type Payload struct {
	Identifier string
	// UserID is set once the principal is known, including after logout.
	UserID    uuid.UUID
	Succeeded bool
	Session   *session.Context
	Auth      Authenticator
}

// Observer reacts to an event. It cannot influence the outcome.
type Observer func(ctx context.Context, event Event, p Payload)

// Logger receives recovered observer and filter panics.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Registry holds observers and filter pipelines. Registration is safe for
// concurrent use; dispatch runs observers synchronously in order.
type Registry struct {
	mu            sync.RWMutex
	observers     map[Event][]Observer
	sessionVars   Pipeline[*session.AuthSession]
	keysToDestroy Pipeline[[]string]
	logger        Logger
}

func New(logger Logger) *Registry {
	return &Registry{
		observers: make(map[Event][]Observer),
		logger:    logger,
	}
}

func (r *Registry) On(event Event, fn Observer) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers[event] = append(r.observers[event], fn)
}

// Dispatch notifies every observer of event. A panicking observer is
// logged and skipped.
func (r *Registry) Dispatch(ctx context.Context, event Event, p Payload) {
	if r == nil {
		return
	}
	r.mu.RLock()
	list := append([]Observer(nil), r.observers[event]...)
	r.mu.RUnlock()

	for _, fn := range list {
		r.safeCall(event, func() { fn(ctx, event, p) })
	}
}

func (r *Registry) OnSessionVars(fn func(*session.AuthSession) *session.AuthSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionVars.Add(fn)
}

func (r *Registry) OnKeysToDestroy(fn func([]string) []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keysToDestroy.Add(fn)
}

// FilterSessionVars runs the UserSessionVars pipeline. A stage returning nil
// is ignored.
func (r *Registry) FilterSessionVars(s *session.AuthSession) *session.AuthSession {
	if r == nil {
		return s
	}
	r.mu.RLock()
	p := r.sessionVars.snapshot()
	r.mu.RUnlock()

	out := s
	r.safeCall(UserSessionVars, func() { out = p.Apply(s, func(v *session.AuthSession) bool { return v != nil }) })
	return out
}

// FilterKeysToDestroy runs the SessionVarsToDestroy pipeline.
func (r *Registry) FilterKeysToDestroy(keys []string) []string {
	if r == nil {
		return keys
	}
	r.mu.RLock()
	p := r.keysToDestroy.snapshot()
	r.mu.RUnlock()

	out := keys
	r.safeCall(SessionVarsToDestroy, func() { out = p.Apply(keys, func(v []string) bool { return v != nil }) })
	return out
}

// Count returns how many stages or observers are registered for id.
func (r *Registry) Count(id fmt.Stringer) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch v := id.(type) {
	case Event:
		return len(r.observers[v])
	case Filter:
		if v == UserSessionVars {
			return r.sessionVars.Len()
		}
		if v == SessionVarsToDestroy {
			return r.keysToDestroy.Len()
		}
	}
	return 0
}

func (r *Registry) safeCall(id fmt.Stringer, fn func()) {
	defer func() {
		if rec := recover(); rec != nil && r.logger != nil {
			r.logger.Errorf(msgHookPanicFmt, id, rec)
		}
	}()
	fn()
}

const msgHookPanicFmt = "hooks: %s handler panicked: %v"
