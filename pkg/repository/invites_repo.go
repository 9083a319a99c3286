package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/domain"
)

// InvitesRepository handles invite persistence. Only token hashes are
// stored; lookups take the hash, never the raw token.
type InvitesRepository struct {
	db *sql.DB
}

// NewInvitesRepository creates a new invites repository.
func NewInvitesRepository(db *sql.DB) *InvitesRepository {
	return &InvitesRepository{db: db}
}

// Create persists a new invite, superseding any still-pending invites for
// the same (workspace, email) pair in the same transaction.
func (r *InvitesRepository) Create(ctx context.Context, invite *domain.Invite) error {
	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.revokePendingTx(ctx, tx, invite.WorkspaceID, invite.Email); err != nil {
			return err
		}
		return r.createTx(ctx, tx, invite)
	})
}

func (r *InvitesRepository) createTx(ctx context.Context, q Querier, invite *domain.Invite) error {
	query := `
		INSERT INTO invites (id, workspace_id, email, role, token_hash, invited_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.ExecContext(ctx, query,
		invite.ID,
		invite.WorkspaceID,
		invite.Email,
		invite.Role,
		invite.TokenHash,
		invite.InvitedBy,
		invite.CreatedAt,
		invite.ExpiresAt,
	)
	return err
}

// revokePendingTx expires unaccepted, unexpired invites for the pair so a
// re-issued invite replaces the prior one instead of coexisting with it.
func (r *InvitesRepository) revokePendingTx(ctx context.Context, q Querier, workspaceID uuid.UUID, email string) error {
	query := `
		UPDATE invites
		SET expires_at = NOW()
		WHERE workspace_id = $1 AND email = $2 AND accepted_at IS NULL AND expires_at > NOW()
	`
	_, err := q.ExecContext(ctx, query, workspaceID, email)
	return err
}

// GetByTokenHash retrieves an invite by its token hash.
func (r *InvitesRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error) {
	query := `
		SELECT id, workspace_id, email, role, token_hash, invited_by, created_at, expires_at, accepted_at
		FROM invites
		WHERE token_hash = $1
	`
	invite := &domain.Invite{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&invite.ID,
		&invite.WorkspaceID,
		&invite.Email,
		&invite.Role,
		&invite.TokenHash,
		&invite.InvitedBy,
		&invite.CreatedAt,
		&invite.ExpiresAt,
		&invite.AcceptedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// MarkAccepted sets accepted_at on an invite if it is not already set.
// Marking an already-accepted invite is a no-op, which keeps racing accept
// calls idempotent.
func (r *InvitesRepository) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invites
		SET accepted_at = NOW()
		WHERE id = $1 AND accepted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ListByWorkspace retrieves all invites for a workspace, newest first.
func (r *InvitesRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Invite, error) {
	query := `
		SELECT id, workspace_id, email, role, token_hash, invited_by, created_at, expires_at, accepted_at
		FROM invites
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*domain.Invite
	for rows.Next() {
		invite := &domain.Invite{}
		err := rows.Scan(
			&invite.ID,
			&invite.WorkspaceID,
			&invite.Email,
			&invite.Role,
			&invite.TokenHash,
			&invite.InvitedBy,
			&invite.CreatedAt,
			&invite.ExpiresAt,
			&invite.AcceptedAt,
		)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}

	return invites, rows.Err()
}
