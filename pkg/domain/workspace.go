package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary containing members and projects.
type Workspace struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
