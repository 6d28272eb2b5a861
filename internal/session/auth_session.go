package session

import (
	"time"

	"session-auth/internal/domain/user"
	"session-auth/internal/rbac"

	"github.com/google/uuid"
)

// ProjectRoleInherited means the project defers to the global role.
const ProjectRoleInherited = "inherited"

// AuthSession is the authenticated principal of one browser session.
// The JSON names are the persisted session layout.
type AuthSession struct {
	Role          rbac.Role      `json:"role"`
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	ProfileID     string         `json:"profileId"`
	Mail          string         `json:"mail"`
	ClientID      uuid.UUID      `json:"clientId"`
	Settings      user.Settings  `json:"settings"`
	TwoFAEnabled  bool           `json:"twoFAEnabled"`
	TwoFAVerified bool           `json:"twoFAVerified"`
	TwoFASecret   string         `json:"twoFASecret"`
	IsLDAP        bool           `json:"isLdap"`
	CreatedOn     time.Time      `json:"createdOn"`
	Modified      time.Time      `json:"modified"`
	ProjectRole   string         `json:"projectRole,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep copy so filters and callers cannot alias stored state.
func (s *AuthSession) Clone() *AuthSession {
	if s == nil {
		return nil
	}
	c := *s
	if s.Extra != nil {
		c.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	if s.Settings.Modals != nil {
		c.Settings.Modals = make(map[string]bool, len(s.Settings.Modals))
		for k, v := range s.Settings.Modals {
			c.Settings.Modals[k] = v
		}
	}
	if s.Settings.Extra != nil {
		c.Settings.Extra = make(map[string]string, len(s.Settings.Extra))
		for k, v := range s.Settings.Extra {
			c.Settings.Extra[k] = v
		}
	}
	return &c
}
