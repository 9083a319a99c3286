package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account read model mirrored from the identity provider.
// Credential issuance lives there, not here.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
