package domain

import (
	"time"

	"github.com/google/uuid"
)

// InviteStatus is the computed lifecycle state of an invite. It is never
// stored; expiry is observed lazily whenever the invite is read.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusExpired  InviteStatus = "expired"
	InviteStatusAccepted InviteStatus = "accepted"
)

// Invite is a time-boxed offer to join a workspace at a given role,
// consumed via token. The raw token is returned once at creation and only
// its hash is kept at rest.
type Invite struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Email       string
	Role        Role
	TokenHash   string
	InvitedBy   uuid.UUID
	CreatedAt   time.Time
	ExpiresAt   time.Time
	AcceptedAt  *time.Time
}

// Status computes the invite's lifecycle state at the given instant.
// Accepted and Expired are terminal; an accepted invite stays accepted
// even after its expiry passes.
func (i *Invite) Status(now time.Time) InviteStatus {
	if i.AcceptedAt != nil {
		return InviteStatusAccepted
	}
	if !now.Before(i.ExpiresAt) {
		return InviteStatusExpired
	}
	return InviteStatusPending
}
