package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/access"
	"github.com/casetrail/casetrail/pkg/audit"
	"github.com/casetrail/casetrail/pkg/domain"
)

// MembershipService performs permission-checked mutations on workspace
// members. Permission enforcement happens here, not in the store.
type MembershipService struct {
	members  MemberStore
	users    UserStore
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewMembershipService creates a new membership service.
func NewMembershipService(
	members MemberStore,
	users UserStore,
	recorder audit.Recorder,
	logger *slog.Logger,
) *MembershipService {
	return &MembershipService{
		members:  members,
		users:    users,
		recorder: recorder,
		logger:   logger,
	}
}

// Add directly adds an existing account to a workspace. Used when the
// invited email already belongs to a registered user; the membership is
// active immediately (accepted_at set), no token round-trip.
func (s *MembershipService) Add(ctx context.Context, actor Actor, workspaceID, userID uuid.UUID, role domain.Role) (*domain.Member, error) {
	if !access.HasPermission(actor.Role, domain.PermMemberInvite) {
		return nil, domain.ErrPermissionDenied
	}
	if !access.CanManageRole(actor.Role, role) {
		return nil, domain.ErrPermissionDenied
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		InvitedBy:   actor.ID,
		InvitedAt:   now,
		AcceptedAt:  &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		ActorID:     actor.ID,
		Action:      audit.ActionCreate,
		EntityType:  "member",
		EntityID:    member.ID,
		EntityName:  user.Email,
		WorkspaceID: workspaceID,
		Details:     map[string]string{"role": string(role)},
	})

	return member, nil
}

// UpdateRole changes a member's role. The actor must hold the
// member.update_role permission and strictly outrank both the member's
// current role and the new one. The member must belong to workspaceID,
// the workspace the actor's role was resolved in; member IDs from other
// workspaces resolve as not found.
func (s *MembershipService) UpdateRole(ctx context.Context, actor Actor, workspaceID, memberID uuid.UUID, newRole domain.Role) (*domain.Member, error) {
	if !access.HasPermission(actor.Role, domain.PermMemberUpdateRole) {
		return nil, domain.ErrPermissionDenied
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.WorkspaceID != workspaceID {
		return nil, domain.ErrMemberNotFound
	}
	if !access.CanManageRole(actor.Role, member.Role) || !access.CanManageRole(actor.Role, newRole) {
		return nil, domain.ErrPermissionDenied
	}

	oldRole := member.Role
	if err := s.members.UpdateRole(ctx, memberID, newRole); err != nil {
		return nil, err
	}
	member.Role = newRole

	s.record(ctx, audit.Entry{
		ActorID:     actor.ID,
		Action:      audit.ActionUpdate,
		EntityType:  "member",
		EntityID:    member.ID,
		WorkspaceID: member.WorkspaceID,
		Details:     map[string]string{"old_role": string(oldRole), "new_role": string(newRole)},
	})

	return member, nil
}

// Remove deletes a member from a workspace. The actor must hold the
// member.remove permission and strictly outrank the member's role. As
// with UpdateRole, the member must belong to workspaceID.
func (s *MembershipService) Remove(ctx context.Context, actor Actor, workspaceID, memberID uuid.UUID) error {
	if !access.HasPermission(actor.Role, domain.PermMemberRemove) {
		return domain.ErrPermissionDenied
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.WorkspaceID != workspaceID {
		return domain.ErrMemberNotFound
	}
	if !access.CanManageRole(actor.Role, member.Role) {
		return domain.ErrPermissionDenied
	}

	if err := s.members.Delete(ctx, memberID); err != nil {
		return err
	}

	s.record(ctx, audit.Entry{
		ActorID:     actor.ID,
		Action:      audit.ActionDelete,
		EntityType:  "member",
		EntityID:    member.ID,
		WorkspaceID: member.WorkspaceID,
		Details:     map[string]string{"role": string(member.Role)},
	})

	return nil
}

// RoleOf resolves a user's role in a workspace.
func (s *MembershipService) RoleOf(ctx context.Context, workspaceID, userID uuid.UUID) (domain.Role, error) {
	member, err := s.members.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// List returns all members of a workspace.
func (s *MembershipService) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Member, error) {
	return s.members.ListByWorkspace(ctx, workspaceID)
}

// record appends an audit entry, logging but never propagating failures.
func (s *MembershipService) record(ctx context.Context, entry audit.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit entry",
			"error", err,
			"action", fmt.Sprintf("%s %s", entry.Action, entry.EntityType),
			"workspace_id", entry.WorkspaceID,
		)
	}
}
