package rbac

import "errors"

var ErrInvalidRole = errors.New("invalid role")

const (
	errConfigRolesEmpty                 = "rbac config: roles must not be empty"
	errConfigRoleNameEmpty              = "rbac config: role name must not be empty"
	errConfigDuplicateRoleNameFmt       = "rbac config: duplicate role name: %s"
	errConfigDuplicateRoleLevelFmt      = "rbac config: duplicate role level %d (roles %s and %s)"
	errConfigManagementUnknownRoleFmt   = "rbac config: management tier references unknown role: %s"
	errConfigReadFileFmt                = "rbac config: read %s: %w"
	errConfigDecodeFileFmt              = "rbac config: decode %s: %w"
	errMustNewPanicFmt                  = "rbac.MustNew: %v"
	errInvalidRoleFmt                   = "%w: %q"
	msgInvalidRoleDetectedFmt           = "rbac: check for invalid role detected: %q"
	msgInvalidRoleComparisonDetectedFmt = "rbac: invalid role in comparison: %q vs %q"
)
