package domain

// Permission names a resource-action pair gated by a minimum role.
// The set is closed; UI collaborators consume these identifiers as-is.
type Permission string

const (
	PermProjectView      Permission = "project.view"
	PermRunCreate        Permission = "run.create"
	PermDefectCreate     Permission = "defect.create"
	PermProjectCreate    Permission = "project.create"
	PermProjectUpdate    Permission = "project.update"
	PermProjectDelete    Permission = "project.delete"
	PermMemberInvite     Permission = "member.invite"
	PermMemberUpdateRole Permission = "member.update_role"
	PermMemberRemove     Permission = "member.remove"
	PermWorkspaceUpdate  Permission = "workspace.update"
	PermWorkspaceDelete  Permission = "workspace.delete"
)

// Permissions lists every defined permission.
var Permissions = []Permission{
	PermProjectView,
	PermRunCreate,
	PermDefectCreate,
	PermProjectCreate,
	PermProjectUpdate,
	PermProjectDelete,
	PermMemberInvite,
	PermMemberUpdateRole,
	PermMemberRemove,
	PermWorkspaceUpdate,
	PermWorkspaceDelete,
}

// MinRole returns the minimum role required for the permission.
// Unknown permissions return ok=false so callers fail closed.
func (p Permission) MinRole() (Role, bool) {
	switch p {
	case PermProjectView:
		return RoleViewer, true
	case PermRunCreate, PermDefectCreate:
		return RoleTester, true
	case PermProjectCreate, PermProjectUpdate, PermProjectDelete,
		PermMemberInvite, PermMemberUpdateRole, PermMemberRemove:
		return RoleManager, true
	case PermWorkspaceUpdate, PermWorkspaceDelete:
		return RoleAdmin, true
	default:
		return "", false
	}
}
