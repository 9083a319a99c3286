// Package workspace implements workspace membership and the token-based
// invitation lifecycle. Services here enforce permission checks through
// pkg/access before touching storage; handlers pass the acting subject's
// resolved role explicitly on every call.
package workspace

import (
	"context"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/domain"
)

// Actor identifies the subject performing an operation, with its role
// already resolved for the workspace in question.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// MemberStore persists member rows. Create must return
// domain.ErrMemberConflict when a row already exists for the
// (workspace, user) pair; that conflict is the only concurrency guard.
type MemberStore interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Member, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InviteStore persists invites. Create supersedes any still-pending invite
// for the same (workspace, email) pair.
type InviteStore interface {
	Create(ctx context.Context, invite *domain.Invite) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Invite, error)
}

// UserStore reads accounts mirrored from the identity provider.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WorkspaceStore reads workspaces.
type WorkspaceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
}

// InviteEmail carries everything the notification collaborator needs to
// deliver an invite.
type InviteEmail struct {
	InviteID      uuid.UUID
	Email         string
	WorkspaceName string
	InviterName   string
	Role          domain.Role
	AcceptURL     string
}

// InviteNotifier delivers invite emails. The contract is fire-and-forget:
// delivery failure is surfaced as a warning, never as a failure of the
// invite itself.
type InviteNotifier interface {
	SendInviteEmail(email InviteEmail) error
}
