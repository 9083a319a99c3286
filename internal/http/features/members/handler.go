package members

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casetrail/casetrail/internal/http/features/common"
	"github.com/casetrail/casetrail/internal/http/middleware"
	"github.com/casetrail/casetrail/internal/httputil"
	"github.com/casetrail/casetrail/pkg/domain"
	"github.com/casetrail/casetrail/pkg/workspace"
)

// Handler handles workspace member endpoints.
type Handler struct {
	logger      *slog.Logger
	memberships *workspace.MembershipService
	users       workspace.UserStore
}

// NewHandler creates a new members handler.
func NewHandler(logger *slog.Logger, memberships *workspace.MembershipService, users workspace.UserStore) *Handler {
	return &Handler{
		logger:      logger,
		memberships: memberships,
		users:       users,
	}
}

// MemberResponse is the wire representation of a member.
type MemberResponse struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	UserID      string     `json:"user_id"`
	Role        string     `json:"role"`
	InvitedBy   string     `json:"invited_by"`
	InvitedAt   time.Time  `json:"invited_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

func toMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		ID:          m.ID.String(),
		WorkspaceID: m.WorkspaceID.String(),
		UserID:      m.UserID.String(),
		Role:        string(m.Role),
		InvitedBy:   m.InvitedBy.String(),
		InvitedAt:   m.InvitedAt,
		AcceptedAt:  m.AcceptedAt,
	}
}

// actor resolves the caller's membership in the workspace from the URL.
func (h *Handler) actor(r *http.Request) (workspace.Actor, uuid.UUID, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return workspace.Actor{}, uuid.Nil, domain.ErrPermissionDenied
	}
	workspaceID, err := common.WorkspaceID(r)
	if err != nil {
		return workspace.Actor{}, uuid.Nil, domain.ErrWorkspaceNotFound
	}
	role, err := h.memberships.RoleOf(r.Context(), workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			// Non-members learn nothing about the workspace.
			return workspace.Actor{}, uuid.Nil, domain.ErrPermissionDenied
		}
		return workspace.Actor{}, uuid.Nil, err
	}
	return workspace.Actor{ID: userID, Role: role}, workspaceID, nil
}

// List handles listing workspace members.
// GET /v1/workspaces/{workspaceID}/members
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, workspaceID, err := h.actor(r)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	members, err := h.memberships.List(r.Context(), workspaceID)
	if err != nil {
		h.logger.Error("failed to list members", "error", err, "workspace_id", workspaceID)
		common.WriteDomainError(w, err)
		return
	}

	resp := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"members": resp})
}

// AddRequest is the direct-add request body. Used when the target email
// already has an account; no invite token is involved.
type AddRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Add handles directly adding a registered user to a workspace.
// POST /v1/workspaces/{workspaceID}/members
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, err := h.actor(r)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Role == "" {
		httputil.Error(w, http.StatusBadRequest, "email and role are required")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	member, err := h.memberships.Add(r.Context(), actor, workspaceID, user.ID, role)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, toMemberResponse(member))
}

// UpdateRoleRequest is the role change request body.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole handles changing a member's role.
// PATCH /v1/workspaces/{workspaceID}/members/{memberID}
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, err := h.actor(r)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	member, err := h.memberships.UpdateRole(r.Context(), actor, workspaceID, memberID, role)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toMemberResponse(member))
}

// Remove handles removing a member from a workspace.
// DELETE /v1/workspaces/{workspaceID}/members/{memberID}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, err := h.actor(r)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	if err := h.memberships.Remove(r.Context(), actor, workspaceID, memberID); err != nil {
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
