package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casetrail/casetrail/internal/config"
	"github.com/casetrail/casetrail/internal/http/features/invites"
	"github.com/casetrail/casetrail/internal/http/features/members"
	"github.com/casetrail/casetrail/internal/http/features/workspaces"
	"github.com/casetrail/casetrail/internal/http/middleware"
	"github.com/casetrail/casetrail/internal/httputil"
	"github.com/casetrail/casetrail/pkg/workspace"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	MembershipService  *workspace.MembershipService
	InvitationService  *workspace.InvitationService
	ProvisionService   *workspace.ProvisionService
	Users              workspace.UserStore
	Auth               middleware.AuthConfig
	MaxRequestBodySize int64
	RateLimitConfig    config.RateLimitConfig
	SecurityHeaders    config.SecurityHeadersConfig
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)
	authn := middleware.Auth(cfg.Auth)

	workspacesHandler := workspaces.NewHandler(cfg.Logger, cfg.ProvisionService, cfg.MembershipService, cfg.Users)
	membersHandler := members.NewHandler(cfg.Logger, cfg.MembershipService, cfg.Users)
	invitesHandler := invites.NewHandler(cfg.Logger, cfg.InvitationService, cfg.MembershipService, cfg.Users)

	// Invite-link landing: public, the token is the credential.
	r.With(rateLimiters["accept"]).Get("/v1/invites/validate", invitesHandler.Validate)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.With(rateLimiters["accept"]).Post("/v1/invites/accept", invitesHandler.Accept)

		r.Post("/v1/workspaces", workspacesHandler.Create)

		r.Route("/v1/workspaces/{workspaceID}", func(r chi.Router) {
			r.Delete("/", workspacesHandler.Delete)
			r.Get("/roles", workspacesHandler.Roles)

			r.Group(func(r chi.Router) {
				r.Use(rateLimiters["member"])
				r.Get("/members", membersHandler.List)
				r.Post("/members", membersHandler.Add)
				r.Patch("/members/{memberID}", membersHandler.UpdateRole)
				r.Delete("/members/{memberID}", membersHandler.Remove)
			})

			r.Group(func(r chi.Router) {
				r.Use(rateLimiters["invite"])
				r.Get("/invites", invitesHandler.List)
				r.Post("/invites", invitesHandler.Create)
			})
		})
	})

	return r
}
