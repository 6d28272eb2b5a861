package rbac

import (
	"fmt"
	"log"
	"sort"
)

type stdLogger struct{}

func (stdLogger) Warnf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Hierarchy is the ordered role catalog. It is read-only after New and
// safe for concurrent use.
type Hierarchy struct {
	config     Config
	ordered    []Role       // most privileged first
	roleIndex  map[Role]int // role → level
	byLevel    map[int]Role
	management map[Role]bool
	logger     Logger
}

// New creates a Hierarchy from a validated Config
func New(cfg Config) (*Hierarchy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Hierarchy{config: cfg, logger: stdLogger{}}
	h.buildLookups()
	return h, nil
}

// MustNew creates a Hierarchy and panics on invalid config
func MustNew(cfg Config) *Hierarchy {
	h, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return h
}

// WithLogger sets where invalid-role conditions are reported.
func (h *Hierarchy) WithLogger(l Logger) *Hierarchy {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *Hierarchy) buildLookups() {
	cfg := h.config

	defs := make([]RoleDefinition, len(cfg.Roles))
	copy(defs, cfg.Roles)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Level > defs[j].Level })

	h.ordered = make([]Role, 0, len(defs))
	h.roleIndex = make(map[Role]int, len(defs))
	h.byLevel = make(map[int]Role, len(defs))
	for _, rd := range defs {
		h.ordered = append(h.ordered, rd.Name)
		h.roleIndex[rd.Name] = rd.Level
		h.byLevel[rd.Level] = rd.Name
	}

	h.management = make(map[Role]bool, len(cfg.ManagementTier))
	for _, r := range cfg.ManagementTier {
		h.management[r] = true
	}
}

// Roles returns every valid role, most privileged first.
func (h *Hierarchy) Roles() []Role {
	out := make([]Role, len(h.ordered))
	copy(out, h.ordered)
	return out
}

// IndexOf returns the rank of a role. Ranks grow with privilege.
func (h *Hierarchy) IndexOf(role Role) (int, bool) {
	level, ok := h.roleIndex[role]
	return level, ok
}

// AtLeast reports whether holding reference satisfies a requirement of
// candidate: rank(candidate) <= rank(reference). Unknown roles never match.
func (h *Hierarchy) AtLeast(candidate, reference Role) bool {
	want, ok1 := h.roleIndex[candidate]
	have, ok2 := h.roleIndex[reference]
	if !ok1 || !ok2 {
		h.logger.Warnf(msgInvalidRoleComparisonDetectedFmt, candidate, reference)
		return false
	}
	return want <= have
}

// Valid reports whether role belongs to the catalog
func (h *Hierarchy) Valid(role Role) bool {
	_, ok := h.roleIndex[role]
	return ok
}

// ValidateRole validates a role string against the catalog
func (h *Hierarchy) ValidateRole(role string) (Role, error) {
	r := Role(role)
	if h.Valid(r) {
		return r, nil
	}
	h.logger.Warnf(msgInvalidRoleDetectedFmt, role)
	return "", fmt.Errorf(errInvalidRoleFmt, ErrInvalidRole, role)
}

// IsManagement reports whether role is exempt from project-role overrides
func (h *Hierarchy) IsManagement(role Role) bool {
	return h.management[role]
}

// RoleString maps a stored numeric role to its name
func (h *Hierarchy) RoleString(level int) (Role, bool) {
	r, ok := h.byLevel[level]
	return r, ok
}
