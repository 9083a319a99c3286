package workspace

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/access"
	"github.com/casetrail/casetrail/pkg/audit"
	"github.com/casetrail/casetrail/pkg/domain"
	"github.com/casetrail/casetrail/pkg/repository"
)

// ProvisionService bootstraps workspaces. Creating a workspace and its
// first admin member happens in one transaction so a workspace never
// exists without an admin.
type ProvisionService struct {
	db         *sql.DB
	workspaces *repository.WorkspacesRepository
	members    *repository.MembersRepository
	recorder   audit.Recorder
	logger     *slog.Logger
}

// NewProvisionService creates a new provisioning service.
func NewProvisionService(
	db *sql.DB,
	workspaces *repository.WorkspacesRepository,
	members *repository.MembersRepository,
	recorder audit.Recorder,
	logger *slog.Logger,
) *ProvisionService {
	return &ProvisionService{
		db:         db,
		workspaces: workspaces,
		members:    members,
		recorder:   recorder,
		logger:     logger,
	}
}

// CreateWorkspace creates a workspace with the creator as its admin.
func (s *ProvisionService) CreateWorkspace(ctx context.Context, creator *domain.User, name string) (*domain.Workspace, *domain.Member, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, fmt.Errorf("workspace name is required")
	}

	now := time.Now()
	ws := &domain.Workspace{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Slug:      generateSlug(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		UserID:      creator.ID,
		Role:        domain.RoleAdmin,
		InvitedBy:   creator.ID,
		InvitedAt:   now,
		AcceptedAt:  &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.workspaces.CreateTx(ctx, tx, ws); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
		if err := s.members.CreateTx(ctx, tx, member); err != nil {
			return fmt.Errorf("failed to create admin member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, audit.Entry{
			ActorID:     creator.ID,
			Action:      audit.ActionCreate,
			EntityType:  "member",
			EntityID:    member.ID,
			EntityName:  creator.Email,
			WorkspaceID: ws.ID,
			Details:     map[string]string{"role": string(domain.RoleAdmin)},
		}); err != nil {
			s.logger.Warn("failed to record audit entry", "error", err, "workspace_id", ws.ID)
		}
	}

	return ws, member, nil
}

// DeleteWorkspace soft deletes a workspace. Requires the workspace.delete
// permission, held by admins only.
func (s *ProvisionService) DeleteWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) error {
	if !access.HasPermission(actor.Role, domain.PermWorkspaceDelete) {
		return domain.ErrPermissionDenied
	}

	if err := s.workspaces.SoftDelete(ctx, workspaceID); err != nil {
		return err
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, audit.Entry{
			ActorID:     actor.ID,
			Action:      audit.ActionDelete,
			EntityType:  "workspace",
			EntityID:    workspaceID,
			WorkspaceID: workspaceID,
		}); err != nil {
			s.logger.Warn("failed to record audit entry", "error", err, "workspace_id", workspaceID)
		}
	}

	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug derives a unique slug from the workspace name.
// Format: <sanitized-name>-<random>, e.g. acme-qa-ab12cd34.
func generateSlug(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "workspace"
	}
	if len(slug) > 20 {
		slug = slug[:20]
	}
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", slug, random)
}
