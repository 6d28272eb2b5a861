package presets

import "session-auth/internal/rbac"

const (
	RoleOwner     rbac.Role = "owner"
	RoleAdmin     rbac.Role = "admin"
	RoleManager   rbac.Role = "manager"
	RoleEditor    rbac.Role = "editor"
	RoleCommenter rbac.Role = "commenter"
	RoleReadOnly  rbac.Role = "readonly"
)

// Stored numeric role values.
const (
	LevelOwner     = 50
	LevelAdmin     = 40
	LevelManager   = 30
	LevelEditor    = 20
	LevelCommenter = 10
	LevelReadOnly  = 5
)

// Workspace returns the default role catalog of a multi-tenant project workspace.
func Workspace() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: RoleOwner, Level: LevelOwner},
			{Name: RoleAdmin, Level: LevelAdmin},
			{Name: RoleManager, Level: LevelManager},
			{Name: RoleEditor, Level: LevelEditor},
			{Name: RoleCommenter, Level: LevelCommenter},
			{Name: RoleReadOnly, Level: LevelReadOnly},
		},
		ManagementTier: []rbac.Role{RoleOwner, RoleAdmin, RoleManager},
	}
}
