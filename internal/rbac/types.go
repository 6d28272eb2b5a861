package rbac

// Role is a named privilege level (hierarchical)
type Role string

// RoleDefinition defines a role and its privilege level.
// Higher levels carry more privilege.
type RoleDefinition struct {
	Name  Role `yaml:"name"`
	Level int  `yaml:"level"`
}

// Logger receives invalid-role reports
type Logger interface {
	Warnf(format string, args ...interface{})
}
