package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/casetrail/casetrail/internal/config"
	"github.com/casetrail/casetrail/internal/httputil"
)

// RateLimitConfig holds rate limiting configuration for one endpoint class.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
					"user_agent", r.UserAgent(),
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// CreateRateLimiters creates rate limiting middleware per endpoint class.
// Invite creation and acceptance get tight windows; member management gets
// a per-minute budget.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			"invite": noOp,
			"accept": noOp,
			"member": noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		"invite": RateLimit(RateLimitConfig{
			Requests: cfg.InviteRequestsPerWindow,
			Window:   time.Duration(cfg.InviteWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"accept": RateLimit(RateLimitConfig{
			Requests: cfg.AcceptRequestsPerWindow,
			Window:   time.Duration(cfg.AcceptWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"member": RateLimit(RateLimitConfig{
			Requests: cfg.MemberRequestsPerMinute,
			Window:   time.Minute,
			Logger:   logger,
		}),
	}
}
