package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-long-enough-for-hmac")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want 0.0.0.0", cfg.ServerAddr)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want localhost", cfg.DBHost)
	}
	if cfg.DBName != "casetrail" {
		t.Errorf("DBName = %q, want casetrail", cfg.DBName)
	}
	if cfg.InviteTTL != 7*24*time.Hour {
		t.Errorf("InviteTTL = %v, want 168h", cfg.InviteTTL)
	}
	if cfg.AppBaseURL != "http://localhost:8080" {
		t.Errorf("AppBaseURL = %q", cfg.AppBaseURL)
	}
	if cfg.HasSMTP() {
		t.Error("SMTP should be disabled by default")
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate limiting should be enabled by default")
	}
	if !cfg.SecurityHeaders.Enabled {
		t.Error("security headers should be enabled by default")
	}
	if cfg.MaxRequestBodySize != 1<<20 {
		t.Errorf("MaxRequestBodySize = %d, want 1MB", cfg.MaxRequestBodySize)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Load should fail without JWT_SECRET")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-long-enough-for-hmac")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("INVITE_TTL", "48h")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost = %q, want db.internal", cfg.DBHost)
	}
	if cfg.InviteTTL != 48*time.Hour {
		t.Errorf("InviteTTL = %v, want 48h", cfg.InviteTTL)
	}
	if !cfg.HasSMTP() {
		t.Error("SMTP should be enabled when host and from are set")
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting should be disabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-long-enough-for-hmac")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("INVITE_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want default 8080", cfg.ServerPort)
	}
	if cfg.InviteTTL != 7*24*time.Hour {
		t.Errorf("InviteTTL = %v, want default 168h", cfg.InviteTTL)
	}
}
