package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casetrail/casetrail/internal/config"
)

func TestRateLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{
		Requests: 3,
		Window:   time.Minute,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("request over budget: status = %d, want 429", rec.Code)
	}

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestCreateRateLimiters(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	limiters := CreateRateLimiters(config.RateLimitConfig{
		Enabled:                 true,
		InviteRequestsPerWindow: 20,
		InviteWindowMinutes:     10,
		AcceptRequestsPerWindow: 10,
		AcceptWindowMinutes:     5,
		MemberRequestsPerMinute: 60,
	}, logger)

	for _, key := range []string{"invite", "accept", "member"} {
		if limiters[key] == nil {
			t.Errorf("missing %q limiter", key)
		}
	}
}

func TestCreateRateLimiters_Disabled(t *testing.T) {
	limiters := CreateRateLimiters(config.RateLimitConfig{Enabled: false}, nil)

	// With limiting disabled every request passes.
	handler := limiters["invite"](http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}
