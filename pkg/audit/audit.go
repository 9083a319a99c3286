// Package audit defines the boundary to the activity-log collaborator.
// Recording is best-effort: callers log failures and never let them block
// or fail the mutation being audited.
package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Action is the kind of mutation being recorded.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry describes one audited mutation.
type Entry struct {
	ActorID     uuid.UUID
	Action      Action
	EntityType  string
	EntityID    uuid.UUID
	EntityName  string
	WorkspaceID uuid.UUID
	Details     map[string]string
}

// Recorder appends entries to the activity log.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// LogRecorder writes audit entries to a structured logger. It stands in
// for the product's activity-log writer, which consumes the same entries.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a recorder backed by the given logger.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record implements Recorder.
func (r *LogRecorder) Record(_ context.Context, entry Entry) error {
	attrs := []any{
		"actor_id", entry.ActorID,
		"action", string(entry.Action),
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
		"entity_name", entry.EntityName,
		"workspace_id", entry.WorkspaceID,
	}
	for k, v := range entry.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	r.logger.Info("audit", attrs...)
	return nil
}

// NopRecorder discards all entries.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Entry) error { return nil }
