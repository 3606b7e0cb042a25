package asset

import (
	"fmt"
	"strings"
)

// Role is one of the semantic asset attributes the pipeline looks for among
// arbitrarily named columns.
type Role int

const (
	RoleUnit Role = iota
	RoleCondition
	RoleCategory
	RoleDate
	RoleValue
)

var roleNames = [...]string{
	RoleUnit:      "unit",
	RoleCondition: "condition",
	RoleCategory:  "category",
	RoleDate:      "date",
	RoleValue:     "value",
}

// AllRoles returns every role in resolution order.
func AllRoles() []Role {
	return []Role{RoleUnit, RoleCondition, RoleCategory, RoleDate, RoleValue}
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole maps a CLI/HTTP role name to a Role.
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == key {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown role: %q", s)
}

// RoleMap maps roles to the column that carries them. It is built once per
// ingestion and never modified afterwards.
type RoleMap struct {
	cols map[Role]string
}

// NewRoleMap copies m into a RoleMap. Empty column names are treated as unresolved.
func NewRoleMap(m map[Role]string) RoleMap {
	cols := make(map[Role]string, len(m))
	for r, c := range m {
		if c != "" {
			cols[r] = c
		}
	}
	return RoleMap{cols: cols}
}

// Column returns the column resolved for role, if any.
func (m RoleMap) Column(r Role) (string, bool) {
	c, ok := m.cols[r]
	return c, ok
}

// Resolved reports whether role has a column.
func (m RoleMap) Resolved(r Role) bool {
	_, ok := m.cols[r]
	return ok
}

// Unresolved lists the roles without a column, in resolution order.
func (m RoleMap) Unresolved() []Role {
	var out []Role
	for _, r := range AllRoles() {
		if !m.Resolved(r) {
			out = append(out, r)
		}
	}
	return out
}

// Map returns a copy keyed by role name, for JSON and diagnostics.
func (m RoleMap) Map() map[string]string {
	out := make(map[string]string, len(m.cols))
	for r, c := range m.cols {
		out[r.String()] = c
	}
	return out
}
