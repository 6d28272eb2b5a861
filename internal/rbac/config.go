package rbac

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the role catalog
type Config struct {
	Roles []RoleDefinition `yaml:"roles"`
	// ManagementTier lists the roles a project role can never override.
	ManagementTier []Role `yaml:"management_tier"`
}

// Validate checks internal consistency of the Config
func (c *Config) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf(errConfigRolesEmpty)
	}

	roleNames := make(map[Role]bool, len(c.Roles))
	roleLevels := make(map[int]Role, len(c.Roles))
	for _, rd := range c.Roles {
		if rd.Name == "" {
			return fmt.Errorf(errConfigRoleNameEmpty)
		}
		if roleNames[rd.Name] {
			return fmt.Errorf(errConfigDuplicateRoleNameFmt, rd.Name)
		}
		if existing, dup := roleLevels[rd.Level]; dup {
			return fmt.Errorf(errConfigDuplicateRoleLevelFmt, rd.Level, existing, rd.Name)
		}
		roleNames[rd.Name] = true
		roleLevels[rd.Level] = rd.Name
	}

	for _, r := range c.ManagementTier {
		if !roleNames[r] {
			return fmt.Errorf(errConfigManagementUnknownRoleFmt, r)
		}
	}

	return nil
}

// LoadConfigFile reads a YAML role catalog, e.g.
//
//	roles:
//	  - {name: owner, level: 50}
//	  - {name: admin, level: 40}
//	management_tier: [owner, admin]
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf(errConfigReadFileFmt, path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf(errConfigDecodeFileFmt, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
