package invites

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/internal/http/features/common"
	"github.com/casetrail/casetrail/internal/http/middleware"
	"github.com/casetrail/casetrail/internal/httputil"
	"github.com/casetrail/casetrail/pkg/domain"
	"github.com/casetrail/casetrail/pkg/workspace"
)

// Handler handles invitation endpoints.
type Handler struct {
	logger      *slog.Logger
	invitations *workspace.InvitationService
	memberships *workspace.MembershipService
	users       workspace.UserStore
}

// NewHandler creates a new invites handler.
func NewHandler(
	logger *slog.Logger,
	invitations *workspace.InvitationService,
	memberships *workspace.MembershipService,
	users workspace.UserStore,
) *Handler {
	return &Handler{
		logger:      logger,
		invitations: invitations,
		memberships: memberships,
		users:       users,
	}
}

// CreateRequest is the invite creation request body.
type CreateRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InviteResponse is the wire representation of an invite. The raw token
// never appears here; it only travels inside the accept URL.
type InviteResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toInviteResponse(inv *domain.Invite) InviteResponse {
	return InviteResponse{
		ID:          inv.ID.String(),
		WorkspaceID: inv.WorkspaceID.String(),
		Email:       inv.Email,
		Role:        string(inv.Role),
		Status:      string(inv.Status(time.Now())),
		ExpiresAt:   inv.ExpiresAt,
	}
}

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
			return workspace.Actor{}, uuid.Nil, domain.ErrPermissionDenied
		}
		return workspace.Actor{}, uuid.Nil, err
	}
	return workspace.Actor{ID: userID, Role: role}, workspaceID, nil
}

// Create handles invite creation. If the email already belongs to a
// registered account, the user is added directly instead (auto-accepted,
// no token round-trip) and the response says so.
// POST /v1/workspaces/{workspaceID}/invites
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, err := h.actor(r)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	var req CreateRequest
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

	invite, _, err := h.invitations.Create(r.Context(), actor, workspaceID, req.Email, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyRegistered) {
			h.addExistingUser(w, r, actor, workspaceID, req.Email, role)
			return
		}
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, map[string]any{
		"invite": toInviteResponse(invite),
	})
}

// addExistingUser is the direct-add path for emails with an account.
func (h *Handler) addExistingUser(w http.ResponseWriter, r *http.Request, actor workspace.Actor, workspaceID uuid.UUID, email string, role domain.Role) {
	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	member, err := h.memberships.Add(r.Context(), actor, workspaceID, user.ID, role)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, map[string]any{
		"member": map[string]string{
			"id":      member.ID.String(),
			"user_id": member.UserID.String(),
			"role":    string(member.Role),
		},
		"auto_accepted": true,
	})
}

// List handles listing a workspace's invites.
// GET /v1/workspaces/{workspaceID}/invites
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, err := h.actor(r)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	invites, err := h.invitations.ListByWorkspace(r.Context(), actor, workspaceID)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	resp := make([]InviteResponse, 0, len(invites))
	for _, inv := range invites {
		resp = append(resp, toInviteResponse(inv))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"invites": resp})
}

// Validate handles invite-link resolution for the landing page.
// GET /v1/invites/validate?token=...
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	invite, err := h.invitations.Validate(r.Context(), token)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"workspace_id": invite.WorkspaceID.String(),
		"email":        invite.Email,
		"role":         string(invite.Role),
		"expires_at":   invite.ExpiresAt,
	})
}

// AcceptRequest is the invite acceptance request body.
type AcceptRequest struct {
	Token string `json:"token"`
}

// Accept handles invite acceptance by the authenticated user.
// POST /v1/invites/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	member, err := h.invitations.Accept(r.Context(), req.Token, user)
	if err != nil {
		common.WriteDomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"workspace_id": member.WorkspaceID.String(),
		"member_id":    member.ID.String(),
		"role":         string(member.Role),
	})
}
