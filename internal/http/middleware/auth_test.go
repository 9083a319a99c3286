package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("test-secret-key-long-enough-for-hmac")

const testIssuer = "casetrail-idp"

func signToken(t *testing.T, claims IdentityClaims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims(userID uuid.UUID) IdentityClaims {
	return IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: "alice@example.com",
	}
}

func TestAuth(t *testing.T) {
	userID := uuid.New()

	var gotUserID uuid.UUID
	var gotEmail string
	var gotClaims *IdentityClaims
	handler := Auth(AuthConfig{Secret: testSecret, Issuer: testIssuer})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = GetUserID(r.Context())
			gotEmail, _ = GetEmail(r.Context())
			gotClaims, _ = GetClaims(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(userID), testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != userID {
		t.Errorf("user id = %s, want %s", gotUserID, userID)
	}
	if gotEmail != "alice@example.com" {
		t.Errorf("email = %q", gotEmail)
	}
	if gotClaims == nil || gotClaims.Subject != userID.String() {
		t.Errorf("claims = %+v, want subject %s", gotClaims, userID)
	}
}

func TestAuth_Rejections(t *testing.T) {
	userID := uuid.New()

	expired := validClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noExpiry := validClaims(userID)
	noExpiry.ExpiresAt = nil

	wrongIssuer := validClaims(userID)
	wrongIssuer.Issuer = "someone-else"

	badSubject := validClaims(userID)
	badSubject.Subject = "not-a-uuid"

	noEmail := validClaims(userID)
	noEmail.Email = ""

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, validClaims(userID), []byte("completely-different-secret-value"))},
		{"expired", "Bearer " + signToken(t, expired, testSecret)},
		{"missing expiry", "Bearer " + signToken(t, noExpiry, testSecret)},
		{"wrong issuer", "Bearer " + signToken(t, wrongIssuer, testSecret)},
		{"non-uuid subject", "Bearer " + signToken(t, badSubject, testSecret)},
		{"missing email claim", "Bearer " + signToken(t, noEmail, testSecret)},
	}

	handler := Auth(AuthConfig{Secret: testSecret, Issuer: testIssuer})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
