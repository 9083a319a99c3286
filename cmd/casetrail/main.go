package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/casetrail/casetrail/internal/config"
	httpserver "github.com/casetrail/casetrail/internal/http"
	"github.com/casetrail/casetrail/internal/http/middleware"
	"github.com/casetrail/casetrail/internal/notification"
	"github.com/casetrail/casetrail/pkg/audit"
	"github.com/casetrail/casetrail/pkg/repository"
	"github.com/casetrail/casetrail/pkg/workspace"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	workspacesRepo := repository.NewWorkspacesRepository(db)
	membersRepo := repository.NewMembersRepository(db)
	invitesRepo := repository.NewInvitesRepository(db)

	// Audit recorder
	recorder := audit.NewLogRecorder(logger)

	// Initialize email service if configured
	var notifier workspace.InviteNotifier
	if cfg.HasSMTP() {
		notifier = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		logger.Info("email service enabled")
	}

	// Initialize services
	memberships := workspace.NewMembershipService(membersRepo, usersRepo, recorder, logger)
	invitations := workspace.NewInvitationService(
		workspace.InvitationConfig{
			TTL:        cfg.InviteTTL,
			AppBaseURL: cfg.AppBaseURL,
		},
		invitesRepo,
		membersRepo,
		usersRepo,
		workspacesRepo,
		notifier,
		recorder,
		logger,
	)
	provision := workspace.NewProvisionService(db, workspacesRepo, membersRepo, recorder, logger)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:            logger,
		MembershipService: memberships,
		InvitationService: invitations,
		ProvisionService:  provision,
		Users:             usersRepo,
		Auth: middleware.AuthConfig{
			Secret: []byte(cfg.JWTSecret),
			Issuer: cfg.JWTIssuer,
		},
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		RateLimitConfig:    cfg.RateLimit,
		SecurityHeaders:    cfg.SecurityHeaders,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
