package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/domain"
)

// WorkspacesRepository handles workspace data persistence.
type WorkspacesRepository struct {
	db *sql.DB
}

// NewWorkspacesRepository creates a new workspaces repository.
func NewWorkspacesRepository(db *sql.DB) *WorkspacesRepository {
	return &WorkspacesRepository{db: db}
}

// Create creates a new workspace.
func (r *WorkspacesRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	return r.CreateTx(ctx, r.db, workspace)
}

// CreateTx creates a new workspace within a transaction.
func (r *WorkspacesRepository) CreateTx(ctx context.Context, q Querier, workspace *domain.Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.ExecContext(ctx, query,
		workspace.ID,
		workspace.Name,
		workspace.Slug,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)
	return err
}

// GetByID retrieves a workspace by ID.
func (r *WorkspacesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at, deleted_at
		FROM workspaces
		WHERE id = $1 AND deleted_at IS NULL
	`
	var workspace domain.Workspace
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Slug,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
		&workspace.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}

	return &workspace, nil
}

// SoftDelete soft deletes a workspace. Member rows are kept; reads filter
// on the workspace's deleted_at instead.
func (r *WorkspacesRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE workspaces
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWorkspaceNotFound
	}

	return nil
}
