package auth

import (
	"fmt"

	"session-auth/internal/rbac"
	"session-auth/internal/session"
)

// ResolvedRole returns the role an authorization decision is made against.
//
// The project role applies unless forceGlobal is set, the project role is
// unset or "inherited", or the global role is in the management tier.
// A role outside the catalog resolves to rbac.ErrInvalidRole. An invalid
// global role fails closed even when a valid project role is set.
func (e *Engine) ResolvedRole(sc *session.Context, forceGlobal bool) (rbac.Role, error) {
	as, ok := e.current(sc)
	if !ok {
		return "", ErrNoSession
	}
	if _, err := e.roles.ValidateRole(string(as.Role)); err != nil {
		return "", err
	}

	role := as.Role
	if !forceGlobal &&
		as.ProjectRole != "" &&
		as.ProjectRole != session.ProjectRoleInherited &&
		!e.roles.IsManagement(as.Role) {
		role = rbac.Role(as.ProjectRole)
	}

	return e.roles.ValidateRole(string(role))
}

// AtLeast reports whether the session's resolved role satisfies required.
func (e *Engine) AtLeast(sc *session.Context, required rbac.Role, forceGlobal bool) bool {
	current, err := e.ResolvedRole(sc, forceGlobal)
	if err != nil {
		return false
	}
	if required == "" {
		return false
	}
	return e.roles.AtLeast(required, current)
}

// HasRole reports whether the resolved role is one of roles.
func (e *Engine) HasRole(sc *session.Context, forceGlobal bool, roles ...rbac.Role) bool {
	current, err := e.ResolvedRole(sc, forceGlobal)
	if err != nil {
		return false
	}
	for _, r := range roles {
		if r == current {
			return true
		}
	}
	return false
}

// RequireRole returns an error wrapping ErrAccessDenied unless HasRole holds.
// The boundary turns it into a 403.
func (e *Engine) RequireRole(sc *session.Context, forceGlobal bool, roles ...rbac.Role) error {
	if e.HasRole(sc, forceGlobal, roles...) {
		return nil
	}
	return fmt.Errorf(errRequireRoleFmt, ErrAccessDenied, roles)
}
