package auth

import (
	"context"
	"testing"

	"session-auth/internal/domain/user"
	"session-auth/internal/hooks"
	"session-auth/internal/rbac/presets"
	"session-auth/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedInSession(t *testing.T, env *testEnv) *session.Context {
	t.Helper()
	env.store.add(&user.User{Email: "alice@example.com", Role: presets.LevelAdmin}, "pw")
	sc := newSession()
	require.NoError(t, env.engine.Login(context.Background(), sc, "alice@example.com", "pw"))
	return sc
}

func TestLogout_RevokesAllAccess(t *testing.T) {
	env := newTestEnv(t, Config{})
	sc := loggedInSession(t, env)
	require.NoError(t, sc.Set(session.KeyCurrentProject, "p-1"))
	require.NoError(t, sc.Set(session.KeyTemplate, "dark"))

	require.NoError(t, env.engine.Logout(context.Background(), sc))

	for _, forceGlobal := range []bool{false, true} {
		_, err := env.engine.ResolvedRole(sc, forceGlobal)
		assert.ErrorIs(t, err, ErrNoSession)
		assert.False(t, env.engine.AtLeast(sc, presets.RoleReadOnly, forceGlobal))
		assert.False(t, env.engine.HasRole(sc, forceGlobal, presets.RoleAdmin))
		assert.ErrorIs(t, env.engine.RequireRole(sc, forceGlobal, presets.RoleAdmin), ErrAccessDenied)
	}

	assert.False(t, env.engine.LoggedIn(sc))
	assert.True(t, sc.Destroyed())
	assert.False(t, sc.Has(session.KeyCurrentProject))
	assert.False(t, sc.Has(session.KeyTemplate))
	assert.Equal(t, []string{sc.ID()}, env.store.invalid)
}

func TestLogout_FilteredKeys(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.hooks.OnKeysToDestroy(func(keys []string) []string {
		out := []string{"cart"}
		for _, k := range keys {
			if k != session.KeyTemplate && k != session.KeyUserData {
				out = append(out, k)
			}
		}
		return out
	})
	sc := loggedInSession(t, env)
	require.NoError(t, sc.Set("cart", 3))
	require.NoError(t, sc.Set(session.KeyTemplate, "dark"))

	require.NoError(t, env.engine.Logout(context.Background(), sc))

	assert.False(t, sc.Has("cart"))
	assert.True(t, sc.Has(session.KeyTemplate), "filter removed template from the list")
	assert.False(t, sc.Has(session.KeyUserData), "principal always cleared")
	assert.False(t, env.engine.LoggedIn(sc))
}

func TestLogout_EmitsAfterSessionDestroy(t *testing.T) {
	env := newTestEnv(t, Config{})
	sc := loggedInSession(t, env)
	want, _ := env.engine.UserID(sc)

	var got []uuid.UUID
	env.hooks.On(hooks.AfterSessionDestroy, func(_ context.Context, _ hooks.Event, p hooks.Payload) {
		got = append(got, p.UserID)
		assert.False(t, p.Auth.LoggedIn(p.Session))
	})

	require.NoError(t, env.engine.Logout(context.Background(), sc))
	assert.Equal(t, []uuid.UUID{want}, got)
}

func TestLogout_WithoutSessionIsNoop(t *testing.T) {
	env := newTestEnv(t, Config{})
	fired := 0
	env.hooks.On(hooks.AfterSessionDestroy, func(context.Context, hooks.Event, hooks.Payload) { fired++ })

	sc := newSession()
	assert.NoError(t, env.engine.Logout(context.Background(), sc))
	assert.NoError(t, env.engine.Logout(context.Background(), nil))

	assert.False(t, sc.Destroyed())
	assert.Empty(t, env.store.invalid)
	assert.Equal(t, 0, fired)

	logged := loggedInSession(t, env)
	require.NoError(t, env.engine.Logout(context.Background(), logged))
	require.NoError(t, env.engine.Logout(context.Background(), logged))
	assert.Equal(t, 1, fired)
}
