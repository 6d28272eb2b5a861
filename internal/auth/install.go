package auth

import (
	"context"
	"fmt"
	"html"
	"strings"

	"session-auth/internal/domain/user"
	"session-auth/internal/session"

	"github.com/google/uuid"
)

// InstallSession writes the AuthSession for u into sc. The new session is
// always unverified for two-factor purposes. A failed session record write
// is logged and does not undo the installation.
func (e *Engine) InstallSession(ctx context.Context, sc *session.Context, u *user.User, isDirectory bool) error {
	if sc == nil || u == nil || u.ID == uuid.Nil {
		return ErrInvalidPrincipal
	}

	role, ok := e.roles.RoleString(u.Role)
	if !ok {
		// Stored as empty so every authorization check fails closed.
		e.logger.Warnf(msgUnknownStoredRole, u.ID, u.Role)
		role = ""
	}

	modified := u.UpdatedAt
	if modified.IsZero() {
		modified = e.now()
	}

	as := &session.AuthSession{
		Role:          role,
		ID:            u.ID,
		Name:          sanitizeName(u.FirstName),
		ProfileID:     u.ProfileID,
		Mail:          sanitizeEmail(u.Email),
		ClientID:      u.ClientID,
		Settings:      user.DecodeSettings(u.Settings),
		TwoFAEnabled:  u.TwoFAEnabled,
		TwoFAVerified: false,
		TwoFASecret:   u.TwoFASecret,
		IsLDAP:        isDirectory,
		CreatedOn:     u.CreatedAt,
		Modified:      modified,
	}

	as = e.hooks.FilterSessionVars(as)
	// Filters may add fields but cannot skip the fresh two-factor check.
	as.TwoFAVerified = false
	if as.Role != "" && !e.roles.Valid(as.Role) {
		e.logger.Warnf(msgUnknownFilteredRole, u.ID, as.Role)
		as.Role = ""
	}

	if err := sc.SetUserData(as); err != nil {
		return fmt.Errorf(errWriteSessionFmt, err)
	}

	if err := e.store.RecordSessionActivity(ctx, u.ID, sc.ID(), e.now()); err != nil {
		e.logger.Errorf(msgRecordActivityFailed, u.ID, err)
	}
	return nil
}

func sanitizeName(name string) string {
	return html.EscapeString(strings.TrimSpace(name))
}

// sanitizeEmail keeps only the characters allowed in an address.
func sanitizeEmail(email string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("!#$%&'*+-=?^_`{|}~@.[]", r):
			return r
		default:
			return -1
		}
	}, email)
}
