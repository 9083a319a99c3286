package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled                 bool
	InviteRequestsPerWindow int
	InviteWindowMinutes     int
	AcceptRequestsPerWindow int
	AcceptWindowMinutes     int
	MemberRequestsPerMinute int
}

// SecurityHeadersConfig holds security header configuration.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (validation only; tokens are issued by the identity provider)
	JWTSecret string
	JWTIssuer string

	// Invitations
	InviteTTL  time.Duration
	AppBaseURL string

	// SMTP (optional; invites are created even when unset)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// HTTP hardening
	MaxRequestBodySize int64
	RateLimit          RateLimitConfig
	SecurityHeaders    SecurityHeadersConfig
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "casetrail"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "casetrail-idp"),

		// Invitation defaults
		InviteTTL:  getEnvDuration("INVITE_TTL", 7*24*time.Hour),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		// SMTP (optional)
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Casetrail"),

		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),

		RateLimit: RateLimitConfig{
			Enabled:                 getEnvBool("RATE_LIMIT_ENABLED", true),
			InviteRequestsPerWindow: getEnvInt("RATE_LIMIT_INVITE_REQUESTS", 20),
			InviteWindowMinutes:     getEnvInt("RATE_LIMIT_INVITE_WINDOW_MINUTES", 10),
			AcceptRequestsPerWindow: getEnvInt("RATE_LIMIT_ACCEPT_REQUESTS", 10),
			AcceptWindowMinutes:     getEnvInt("RATE_LIMIT_ACCEPT_WINDOW_MINUTES", 5),
			MemberRequestsPerMinute: getEnvInt("RATE_LIMIT_MEMBER_REQUESTS_PER_MINUTE", 60),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'self'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_XSS_PROTECTION", "1; mode=block"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
			PermissionsPolicy:  getEnv("SECURITY_PERMISSIONS_POLICY", ""),
		},
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// HasSMTP returns true if SMTP delivery is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
