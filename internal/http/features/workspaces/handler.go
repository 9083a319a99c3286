package workspaces

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/casetrail/casetrail/internal/http/features/common"
	"github.com/casetrail/casetrail/internal/http/middleware"
	"github.com/casetrail/casetrail/internal/httputil"
	"github.com/casetrail/casetrail/pkg/access"
	"github.com/casetrail/casetrail/pkg/domain"
	"github.com/casetrail/casetrail/pkg/workspace"
)

// Handler handles workspace endpoints.
type Handler struct {
	logger      *slog.Logger
	provision   *workspace.ProvisionService
	memberships *workspace.MembershipService
	users       workspace.UserStore
}

// NewHandler creates a new workspaces handler.
func NewHandler(
	logger *slog.Logger,
	provision *workspace.ProvisionService,
	memberships *workspace.MembershipService,
	users workspace.UserStore,
) *Handler {
	return &Handler{
		logger:      logger,
		provision:   provision,
		memberships: memberships,
		users:       users,
	}
}

// CreateRequest is the workspace creation request body.
type CreateRequest struct {
	Name string `json:"name"`
}

// Create handles workspace creation. The creator becomes the workspace's
// first admin in the same transaction.
// POST /v1/workspaces
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	ws, member, err := h.provision.CreateWorkspace(r.Context(), user, req.Name)
	if err != nil {
		h.logger.Error("failed to create workspace", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create workspace")
		return
	}

	httputil.JSON(w, http.StatusCreated, map[string]any{
		"workspace": map[string]string{
			"id":   ws.ID.String(),
			"name": ws.Name,
			"slug": ws.Slug,
		},
		"member": map[string]string{
			"id":   member.ID.String(),
			"role": string(member.Role),
		},
	})
}

// Delete soft deletes a workspace. Admin only.
// DELETE /v1/workspaces/{workspaceID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	workspaceID, err := common.WorkspaceID(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	role, err := h.memberships.RoleOf(r.Context(), workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			common.WriteDomainError(w, domain.ErrPermissionDenied)
			return
		}
		common.WriteDomainError(w, err)
		return
	}

	actor := workspace.Actor{ID: userID, Role: role}
	if err := h.provision.DeleteWorkspace(r.Context(), actor, workspaceID); err != nil {
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Roles returns the roles the caller may assign in the workspace, in
// hierarchy order for role dropdowns.
// GET /v1/workspaces/{workspaceID}/roles
func (h *Handler) Roles(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	workspaceID, err := common.WorkspaceID(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	role, err := h.memberships.RoleOf(r.Context(), workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			common.WriteDomainError(w, domain.ErrPermissionDenied)
			return
		}
		common.WriteDomainError(w, err)
		return
	}

	assignable := access.AssignableRoles(role)
	roles := make([]string, 0, len(assignable))
	for _, a := range assignable {
		roles = append(roles, string(a))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{
		"role":             string(role),
		"assignable_roles": roles,
	})
}
