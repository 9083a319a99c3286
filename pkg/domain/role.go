package domain

import "fmt"

// Role is a member's role within a workspace. Roles form a total order:
// viewer < tester < manager < admin.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleTester  Role = "tester"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Roles lists all roles in ascending rank order.
var Roles = []Role{RoleViewer, RoleTester, RoleManager, RoleAdmin}

// Rank returns the numeric position of the role in the hierarchy.
// Unknown roles rank below viewer so they never grant anything.
func (r Role) Rank() int {
	switch r {
	case RoleViewer:
		return 0
	case RoleTester:
		return 1
	case RoleManager:
		return 2
	case RoleAdmin:
		return 3
	default:
		return -1
	}
}

// Valid reports whether the role is one of the defined roles.
func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// ParseRole converts a role string from an API payload or the database.
// Unknown values are rejected rather than silently downgraded.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleTester, RoleManager, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}
