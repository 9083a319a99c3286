package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/audit"
	"github.com/casetrail/casetrail/pkg/domain"
)

func TestProvisionService_DeleteWorkspace_PermissionDenied(t *testing.T) {
	// The permission check runs before any storage access.
	svc := NewProvisionService(nil, nil, nil, audit.NopRecorder{}, testLogger())

	for _, role := range []domain.Role{domain.RoleViewer, domain.RoleTester, domain.RoleManager} {
		actor := Actor{ID: uuid.New(), Role: role}
		err := svc.DeleteWorkspace(context.Background(), actor, uuid.New())
		if !errors.Is(err, domain.ErrPermissionDenied) {
			t.Errorf("DeleteWorkspace as %s: error = %v, want ErrPermissionDenied", role, err)
		}
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPrefix string
	}{
		{"simple", "Acme QA", "acme-qa-"},
		{"punctuation stripped", "Team #1 (Web)!", "team-1-web-"},
		{"long name truncated", "A Very Long Workspace Name Indeed", "a-very-long-workspac-"},
		{"only punctuation", "!!!", "workspace-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateSlug(tt.input)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("generateSlug(%q) = %q, want prefix %q", tt.input, got, tt.wantPrefix)
			}
			suffix := strings.TrimPrefix(got, tt.wantPrefix)
			if len(suffix) != 8 {
				t.Errorf("random suffix %q should be 8 characters", suffix)
			}
		})
	}
}

func TestGenerateSlug_Unique(t *testing.T) {
	if generateSlug("acme") == generateSlug("acme") {
		t.Error("slugs for the same name should not collide")
	}
}
