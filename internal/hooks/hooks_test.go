package hooks

import (
	"context"
	"fmt"
	"testing"

	"session-auth/internal/session"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Errorf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestDispatch_OrderAndIsolation(t *testing.T) {
	logger := &captureLogger{}
	r := New(logger)

	var calls []string
	r.On(AfterLoginCheck, func(_ context.Context, e Event, p Payload) {
		calls = append(calls, "first:"+p.Identifier)
	})
	r.On(AfterLoginCheck, func(context.Context, Event, Payload) {
		panic("boom")
	})
	r.On(AfterLoginCheck, func(_ context.Context, e Event, _ Payload) {
		calls = append(calls, "third:"+e.String())
	})
	r.On(BeforeLoginCheck, func(context.Context, Event, Payload) {
		calls = append(calls, "before")
	})

	r.Dispatch(context.Background(), AfterLoginCheck, Payload{Identifier: "alice"})

	assert.Equal(t, []string{"first:alice", "third:afterLoginCheck"}, calls)
	assert.Len(t, logger.lines, 1)
	assert.Equal(t, 3, r.Count(AfterLoginCheck))
	assert.Equal(t, 0, r.Count(AfterSessionDestroy))
}

func TestFilterSessionVars(t *testing.T) {
	r := New(nil)
	r.OnSessionVars(func(s *session.AuthSession) *session.AuthSession {
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		s.Extra["plan"] = "pro"
		return s
	})
	r.OnSessionVars(func(*session.AuthSession) *session.AuthSession { return nil })

	out := r.FilterSessionVars(&session.AuthSession{Name: "alice"})

	assert.Equal(t, "alice", out.Name)
	assert.Equal(t, "pro", out.Extra["plan"])
	assert.Equal(t, 2, r.Count(UserSessionVars))
}

func TestFilterKeysToDestroy(t *testing.T) {
	r := New(nil)
	r.OnKeysToDestroy(func(keys []string) []string { return append(keys, "pluginState") })

	keys := r.FilterKeysToDestroy(session.DefaultKeysToDestroy())

	assert.Contains(t, keys, "pluginState")
	assert.Contains(t, keys, session.KeyUserData)
}

func TestFilterPanicFallsBack(t *testing.T) {
	logger := &captureLogger{}
	r := New(logger)
	r.OnKeysToDestroy(func([]string) []string { panic("bad filter") })

	keys := r.FilterKeysToDestroy([]string{"a"})

	assert.Equal(t, []string{"a"}, keys)
	assert.Len(t, logger.lines, 1)
}

func TestNilRegistryIsInert(t *testing.T) {
	var r *Registry

	r.Dispatch(context.Background(), AfterSessionDestroy, Payload{})
	assert.Equal(t, []string{"a"}, r.FilterKeysToDestroy([]string{"a"}))
	s := &session.AuthSession{Name: "x"}
	assert.Same(t, s, r.FilterSessionVars(s))
}

func TestIdentifierNames(t *testing.T) {
	assert.Equal(t, "beforeLoginCheck", BeforeLoginCheck.String())
	assert.Equal(t, "afterSessionDestroy", AfterSessionDestroy.String())
	assert.Equal(t, "afterTwoFactorCheck", AfterTwoFactorCheck.String())
	assert.Equal(t, "user_session_vars", UserSessionVars.String())
	assert.Equal(t, "sessions_vars_to_destroy", SessionVarsToDestroy.String())
	assert.Equal(t, "event(99)", Event(99).String())
}
