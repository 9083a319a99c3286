package access

import (
	"testing"

	"github.com/casetrail/casetrail/pkg/domain"
)

func TestHasMinRole_AllPairs(t *testing.T) {
	// hasMinRole(r, t) holds iff rank(r) >= rank(t), for all 16 pairs.
	for _, subject := range domain.Roles {
		for _, threshold := range domain.Roles {
			want := subject.Rank() >= threshold.Rank()
			if got := HasMinRole(subject, threshold); got != want {
				t.Errorf("HasMinRole(%s, %s) = %v, want %v", subject, threshold, got, want)
			}
		}
	}
}

func TestHasMinRole_UnknownRoles(t *testing.T) {
	if HasMinRole(domain.Role("owner"), domain.RoleViewer) {
		t.Error("unknown subject role should never satisfy a threshold")
	}
	if HasMinRole(domain.RoleAdmin, domain.Role("owner")) {
		t.Error("unknown threshold role should never be satisfied")
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role domain.Role
		perm domain.Permission
		want bool
	}{
		{domain.RoleViewer, domain.PermProjectView, true},
		{domain.RoleViewer, domain.PermRunCreate, false},
		{domain.RoleTester, domain.PermRunCreate, true},
		{domain.RoleTester, domain.PermMemberInvite, false},
		{domain.RoleManager, domain.PermMemberInvite, true},
		{domain.RoleManager, domain.PermMemberUpdateRole, true},
		{domain.RoleManager, domain.PermWorkspaceDelete, false},
		{domain.RoleAdmin, domain.PermWorkspaceDelete, true},
		{domain.RoleAdmin, domain.PermProjectView, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			if got := HasPermission(tt.role, tt.perm); got != tt.want {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
			}
		})
	}
}

func TestHasPermission_MonotonicInRank(t *testing.T) {
	// If a permission holds for a role, it holds for every higher rank.
	for _, perm := range domain.Permissions {
		for i, role := range domain.Roles {
			if !HasPermission(role, perm) {
				continue
			}
			for _, higher := range domain.Roles[i:] {
				if !HasPermission(higher, perm) {
					t.Errorf("HasPermission(%s, %s) holds but HasPermission(%s, %s) does not", role, perm, higher, perm)
				}
			}
		}
	}
}

func TestHasPermission_UnknownFailsClosed(t *testing.T) {
	if HasPermission(domain.RoleAdmin, domain.Permission("billing.manage")) {
		t.Error("unknown permission should resolve to false even for admin")
	}
}

func TestCanManageRole(t *testing.T) {
	tests := []struct {
		subject domain.Role
		target  domain.Role
		want    bool
	}{
		{domain.RoleAdmin, domain.RoleManager, true},
		{domain.RoleAdmin, domain.RoleViewer, true},
		{domain.RoleAdmin, domain.RoleAdmin, false},
		{domain.RoleManager, domain.RoleAdmin, false},
		{domain.RoleManager, domain.RoleManager, false},
		{domain.RoleManager, domain.RoleTester, true},
		{domain.RoleTester, domain.RoleViewer, true},
		{domain.RoleViewer, domain.RoleViewer, false},
	}

	for _, tt := range tests {
		if got := CanManageRole(tt.subject, tt.target); got != tt.want {
			t.Errorf("CanManageRole(%s, %s) = %v, want %v", tt.subject, tt.target, got, tt.want)
		}
	}
}

func TestAssignableRoles(t *testing.T) {
	tests := []struct {
		subject domain.Role
		want    []domain.Role
	}{
		{domain.RoleAdmin, []domain.Role{domain.RoleViewer, domain.RoleTester, domain.RoleManager}},
		{domain.RoleManager, []domain.Role{domain.RoleViewer, domain.RoleTester}},
		{domain.RoleTester, []domain.Role{domain.RoleViewer}},
		{domain.RoleViewer, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.subject), func(t *testing.T) {
			got := AssignableRoles(tt.subject)
			if len(got) != len(tt.want) {
				t.Fatalf("AssignableRoles(%s) = %v, want %v", tt.subject, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AssignableRoles(%s)[%d] = %s, want %s", tt.subject, i, got[i], tt.want[i])
				}
			}
		})
	}
}
