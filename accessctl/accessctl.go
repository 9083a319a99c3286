// Package accessctl provides an embeddable workspace access-control and
// invitation engine for multi-tenant applications.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create an Engine instance and mount its routes
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	engine, err := accessctl.New(accessctl.Config{
//	    DB:        db,
//	    JWTSecret: "shared-secret-with-your-identity-provider",
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//
//	r := chi.NewRouter()
//	r.Mount("/", engine.Router())
//	http.ListenAndServe(":8080", r)
package accessctl

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/casetrail/casetrail/internal/config"
	httpserver "github.com/casetrail/casetrail/internal/http"
	"github.com/casetrail/casetrail/internal/http/middleware"
	"github.com/casetrail/casetrail/internal/notification"
	"github.com/casetrail/casetrail/pkg/audit"
	"github.com/casetrail/casetrail/pkg/repository"
	"github.com/casetrail/casetrail/pkg/workspace"
)

// Config holds the configuration for the engine.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// JWTSecret is the secret shared with the identity provider that
	// issues access tokens (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the expected issuer claim (default: "casetrail-idp").
	JWTIssuer string

	// InviteTTL is the invite validity window (default: 7 days).
	InviteTTL time.Duration

	// AppBaseURL is the public base URL used in invite links.
	AppBaseURL string

	// Email enables SMTP invite delivery (optional).
	Email *EmailConfig

	// Recorder receives audit entries (default: slog-backed recorder).
	Recorder audit.Recorder

	// Logger is the structured logger (default: JSON to stdout).
	Logger *slog.Logger
}

// EmailConfig holds SMTP configuration for invite delivery.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// Engine is the wired access-control engine.
type Engine struct {
	config      Config
	db          *sql.DB
	users       *repository.UsersRepository
	workspaces  *repository.WorkspacesRepository
	members     *repository.MembersRepository
	invites     *repository.InvitesRepository
	memberships *workspace.MembershipService
	invitations *workspace.InvitationService
	provision   *workspace.ProvisionService
}

// New creates a new engine with the given configuration.
// Returns an error if required database tables don't exist.
// Run migrations first - see migrations/ folder for SQL files.
func New(cfg Config) (*Engine, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateSchema(cfg.DB); err != nil {
		return nil, err
	}

	usersRepo := repository.NewUsersRepository(cfg.DB)
	workspacesRepo := repository.NewWorkspacesRepository(cfg.DB)
	membersRepo := repository.NewMembersRepository(cfg.DB)
	invitesRepo := repository.NewInvitesRepository(cfg.DB)

	var notifier workspace.InviteNotifier
	if cfg.Email != nil {
		notifier = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			User:     cfg.Email.User,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
	}

	memberships := workspace.NewMembershipService(membersRepo, usersRepo, cfg.Recorder, cfg.Logger)
	invitations := workspace.NewInvitationService(
		workspace.InvitationConfig{TTL: cfg.InviteTTL, AppBaseURL: cfg.AppBaseURL},
		invitesRepo,
		membersRepo,
		usersRepo,
		workspacesRepo,
		notifier,
		cfg.Recorder,
		cfg.Logger,
	)
	provision := workspace.NewProvisionService(cfg.DB, workspacesRepo, membersRepo, cfg.Recorder, cfg.Logger)

	return &Engine{
		config:      cfg,
		db:          cfg.DB,
		users:       usersRepo,
		workspaces:  workspacesRepo,
		members:     membersRepo,
		invites:     invitesRepo,
		memberships: memberships,
		invitations: invitations,
		provision:   provision,
	}, nil
}

// Router returns an http.Handler with all workspace, member, and invite
// routes registered. Mount it on your main router.
func (e *Engine) Router() http.Handler {
	return httpserver.NewRouter(httpserver.RouterConfig{
		Logger:            e.config.Logger,
		MembershipService: e.memberships,
		InvitationService: e.invitations,
		ProvisionService:  e.provision,
		Users:             e.users,
		Auth: middleware.AuthConfig{
			Secret: []byte(e.config.JWTSecret),
			Issuer: e.config.JWTIssuer,
		},
		MaxRequestBodySize: 1 << 20,
		RateLimitConfig:    config.RateLimitConfig{Enabled: false},
		SecurityHeaders:    config.SecurityHeadersConfig{Enabled: false},
	})
}

// Memberships returns the membership service for direct use.
func (e *Engine) Memberships() *workspace.MembershipService {
	return e.memberships
}

// Invitations returns the invitation service for direct use.
func (e *Engine) Invitations() *workspace.InvitationService {
	return e.invitations
}

// AuthMiddleware returns middleware that validates identity-provider
// tokens. Use this to protect your own routes with the same identity:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(engine.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (e *Engine) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Auth(middleware.AuthConfig{
		Secret: []byte(e.config.JWTSecret),
		Issuer: e.config.JWTIssuer,
	})
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("accessctl: DB is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("accessctl: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("accessctl: JWTSecret must be at least 32 characters")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "casetrail-idp"
	}
	if cfg.InviteTTL == 0 {
		cfg.InviteTTL = workspace.DefaultInviteTTL
	}
	if cfg.AppBaseURL == "" {
		cfg.AppBaseURL = "http://localhost:8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	if cfg.Recorder == nil {
		cfg.Recorder = audit.NewLogRecorder(cfg.Logger)
	}
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{"users", "workspaces", "members", "invites"}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("accessctl: missing table '%s' - run migrations first (see migrations/ folder)", table)
		}
		if err != nil {
			return fmt.Errorf("accessctl: failed to check schema: %w", err)
		}
	}

	return nil
}
