package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret string, claims tokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	m := NewMiddleware("test-secret", nil)

	token := signTestToken(t, "test-secret", tokenClaims{
		Email:       "tutor@example.com",
		Name:        "Alex",
		PartnerID:   "student-1",
		PartnerName: "Sam",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "tutor-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	var got *AuthUser
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if got == nil {
		t.Fatal("expected user in request context")
	}
	if got.ID != "tutor-1" {
		t.Errorf("expected user ID tutor-1, got %q", got.ID)
	}
	if !got.HasPartner() || got.PartnerID != "student-1" {
		t.Errorf("expected linked partner student-1, got %q", got.PartnerID)
	}
}

func TestRequireAuthRejectsMissingAndBadTokens(t *testing.T) {
	m := NewMiddleware("test-secret", nil)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "no authorization header", header: ""},
		{name: "not a bearer token", header: "Basic abc123"},
		{
			name: "wrong signing secret",
			header: "Bearer " + signTestToken(t, "other-secret", tokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "tutor-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}),
		},
		{
			name: "expired token",
			header: "Bearer " + signTestToken(t, "test-secret", tokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "tutor-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				},
			}),
		},
		{
			name: "no subject",
			header: "Bearer " + signTestToken(t, "test-secret", tokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler(recorder, req)

			if recorder.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", recorder.Code)
			}
		})
	}
}
