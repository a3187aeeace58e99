package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vocabduet/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// AuthUser is the authenticated caller, decoded from the bearer token
// minted by the identity service. Partner fields are present when the
// user has a linked partner.
type AuthUser struct {
	ID           string
	Email        string
	Name         string
	PartnerID    string
	PartnerEmail string
	PartnerName  string
}

// HasPartner reports whether the user has a linked partner.
func (u *AuthUser) HasPartner() bool {
	return u.PartnerID != ""
}

type tokenClaims struct {
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	PartnerID    string `json:"partnerId,omitempty"`
	PartnerEmail string `json:"partnerEmail,omitempty"`
	PartnerName  string `json:"partnerName,omitempty"`
	jwt.RegisteredClaims
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	jwtSecret []byte
	limiter   *security.RateLimiter
}

// NewMiddleware creates a new middleware instance. limiter may be nil
// to disable rate limiting.
func NewMiddleware(jwtSecret string, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		jwtSecret: []byte(jwtSecret),
		limiter:   limiter,
	}
}

// RequireAuth is middleware that requires a valid bearer token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token", "", nil)
			return
		}

		user, err := m.parseToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid bearer token", "Token rejected", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects callers that exceed the configured rate, keyed by
// user when authenticated and by client IP otherwise.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil {
			key := security.GetClientIP(r)
			if user := GetUserFromContext(r.Context()); user != nil {
				key = user.ID
			}
			if !m.limiter.Allow(key) {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded", "", nil)
				return
			}
		}
		next(w, r)
	}
}

func (m *Middleware) parseToken(tokenString string) (*AuthUser, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &AuthUser{
		ID:           claims.Subject,
		Email:        claims.Email,
		Name:         claims.Name,
		PartnerID:    claims.PartnerID,
		PartnerEmail: claims.PartnerEmail,
		PartnerName:  claims.PartnerName,
	}, nil
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *AuthUser {
	user, ok := ctx.Value(UserContextKey).(*AuthUser)
	if !ok {
		return nil
	}
	return user
}
