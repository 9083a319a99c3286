// Package access implements the role hierarchy and permission resolution
// for workspaces. Everything here is pure: no I/O, no ambient state, safe
// to call on every request. The subject's role is always passed explicitly.
package access

import "github.com/casetrail/casetrail/pkg/domain"

// HasMinRole reports whether subject ranks at or above threshold.
func HasMinRole(subject, threshold domain.Role) bool {
	if !subject.Valid() || !threshold.Valid() {
		return false
	}
	return subject.Rank() >= threshold.Rank()
}

// HasPermission reports whether subject's rank meets the permission's
// minimum role. Unknown permissions resolve to false (fail closed).
func HasPermission(subject domain.Role, perm domain.Permission) bool {
	min, ok := perm.MinRole()
	if !ok {
		return false
	}
	return HasMinRole(subject, min)
}

// CanManageRole reports whether subject may assign or revoke target on
// another member. The subject must strictly outrank the target role, which
// blocks lateral and upward privilege changes: a manager can hand out
// tester, never admin, and an admin cannot manage another admin.
func CanManageRole(subject, target domain.Role) bool {
	if !subject.Valid() || !target.Valid() {
		return false
	}
	return subject.Rank() > target.Rank()
}

// AssignableRoles returns the roles subject may grant, in ascending rank
// order for display. The subject's own rank and above are never included.
func AssignableRoles(subject domain.Role) []domain.Role {
	var roles []domain.Role
	for _, r := range domain.Roles {
		if CanManageRole(subject, r) {
			roles = append(roles, r)
		}
	}
	return roles
}
