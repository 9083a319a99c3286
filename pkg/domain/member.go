package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member binds a user to a role within a workspace. At most one member row
// exists per (workspace, user) pair; the database enforces this and the
// invitation flow relies on the resulting conflict to stay idempotent.
type Member struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        Role
	InvitedBy   uuid.UUID
	InvitedAt   time.Time
	AcceptedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the membership has been accepted.
// A nil AcceptedAt marks a pending, not-yet-active membership.
func (m *Member) IsActive() bool {
	return m.AcceptedAt != nil
}
