package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/casetrail/casetrail/pkg/domain"
)

// MembersRepository handles member persistence. The members table carries a
// unique constraint on (workspace_id, user_id); a violation surfaces as
// domain.ErrMemberConflict, which is the concurrency guard for racing
// invite acceptances.
type MembersRepository struct {
	db *sql.DB
}

// NewMembersRepository creates a new members repository.
func NewMembersRepository(db *sql.DB) *MembersRepository {
	return &MembersRepository{db: db}
}

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Create inserts a new member. Returns domain.ErrMemberConflict if a row
// already exists for the (workspace, user) pair.
func (r *MembersRepository) Create(ctx context.Context, member *domain.Member) error {
	return r.CreateTx(ctx, r.db, member)
}

// CreateTx inserts a new member within a transaction.
func (r *MembersRepository) CreateTx(ctx context.Context, q Querier, member *domain.Member) error {
	query := `
		INSERT INTO members (id, workspace_id, user_id, role, invited_by, invited_at, accepted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := q.ExecContext(ctx, query,
		member.ID,
		member.WorkspaceID,
		member.UserID,
		member.Role,
		member.InvitedBy,
		member.InvitedAt,
		member.AcceptedAt,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrMemberConflict
	}
	return err
}

// GetByID retrieves a member by ID.
func (r *MembersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, workspace_id, user_id, role, invited_by, invited_at, accepted_at, created_at, updated_at
		FROM members
		WHERE id = $1
	`
	var member domain.Member
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&member.ID,
		&member.WorkspaceID,
		&member.UserID,
		&member.Role,
		&member.InvitedBy,
		&member.InvitedAt,
		&member.AcceptedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	return &member, nil
}

// GetByWorkspaceAndUser retrieves the member row for a user in a workspace.
func (r *MembersRepository) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, workspace_id, user_id, role, invited_by, invited_at, accepted_at, created_at, updated_at
		FROM members
		WHERE workspace_id = $1 AND user_id = $2
	`
	var member domain.Member
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(
		&member.ID,
		&member.WorkspaceID,
		&member.UserID,
		&member.Role,
		&member.InvitedBy,
		&member.InvitedAt,
		&member.AcceptedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	return &member, nil
}

// ListByWorkspace retrieves all members of a workspace.
func (r *MembersRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Member, error) {
	query := `
		SELECT id, workspace_id, user_id, role, invited_by, invited_at, accepted_at, created_at, updated_at
		FROM members
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		var member domain.Member
		err := rows.Scan(
			&member.ID,
			&member.WorkspaceID,
			&member.UserID,
			&member.Role,
			&member.InvitedBy,
			&member.InvitedAt,
			&member.AcceptedAt,
			&member.CreatedAt,
			&member.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, &member)
	}

	return members, rows.Err()
}

// UpdateRole updates the role of a member.
func (r *MembersRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	query := `
		UPDATE members
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, role, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

// Delete removes a member. Hard delete: a removed member may be re-invited,
// so the (workspace_id, user_id) pair must become free again.
func (r *MembersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM members WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}
