// Package common holds helpers shared by the feature handlers.
package common

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casetrail/casetrail/internal/httputil"
	"github.com/casetrail/casetrail/pkg/domain"
)

// WorkspaceID parses the workspaceID URL parameter.
func WorkspaceID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "workspaceID"))
}

// WriteDomainError maps a domain error to its HTTP response. Unrecognized
// errors become opaque 500s; storage details never leak to clients.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		httputil.Error(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, domain.ErrEmailMismatch):
		httputil.Error(w, http.StatusForbidden, "invite email does not match your account")
	case errors.Is(err, domain.ErrMemberNotFound):
		httputil.Error(w, http.StatusNotFound, "member not found")
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		httputil.Error(w, http.StatusNotFound, "workspace not found")
	case errors.Is(err, domain.ErrUserNotFound):
		httputil.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrInviteNotFound):
		httputil.Error(w, http.StatusNotFound, "invite not found")
	case errors.Is(err, domain.ErrInviteExpired):
		httputil.Error(w, http.StatusGone, "invite expired")
	case errors.Is(err, domain.ErrInviteAlreadyAccepted):
		httputil.Error(w, http.StatusConflict, "invite already accepted")
	case errors.Is(err, domain.ErrMemberConflict):
		httputil.Error(w, http.StatusConflict, "user is already a member of this workspace")
	case errors.Is(err, domain.ErrInvalidRole):
		httputil.Error(w, http.StatusBadRequest, "invalid role")
	case errors.Is(err, domain.ErrInvalidEmail):
		httputil.Error(w, http.StatusBadRequest, "invalid email address")
	case errors.Is(err, domain.ErrInvalidToken):
		httputil.Error(w, http.StatusBadRequest, "invalid token")
	default:
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
