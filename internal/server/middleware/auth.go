// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const identityKey ContextKey = "identity"

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID uuid.UUID
	Role   types.Role
}

// Claims is what a validated session token carries.
type Claims interface {
	GetUserID() uuid.UUID
	GetRole() types.Role
}

// TokenValidator validates session tokens. It lets the middleware work with any
// JWT implementation without an import cycle.
type TokenValidator interface {
	ValidateToken(tokenString string) (Claims, error)
}

// AuthMiddleware rejects requests without a valid session (cookie or bearer token)
// and adds the caller's Identity to the request context.
func AuthMiddleware(validator TokenValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authenticate(r, validator, cookieName)
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth adds the caller's Identity when a valid session is present and
// otherwise passes the request through anonymously.
func OptionalAuth(validator TokenValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := authenticate(r, validator, cookieName); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole allows only callers holding one of roles. It must run after AuthMiddleware.
func RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(roles, id.Role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest returns the session token from the Authorization header
// (case-insensitive "Bearer") or, failing that, from the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func authenticate(r *http.Request, validator TokenValidator, cookieName string) (Identity, bool) {
	token := TokenFromRequest(r, cookieName)
	if token == "" {
		return Identity{}, false
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return Identity{}, false
	}
	id := Identity{UserID: claims.GetUserID(), Role: claims.GetRole()}
	if id.UserID == uuid.Nil || !id.Role.Valid() {
		return Identity{}, false
	}
	return id, true
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the caller attached by AuthMiddleware or OptionalAuth.
func GetIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	id, ok := GetIdentity(r)
	if !ok {
		return uuid.Nil, fmt.Errorf("user ID not found in request context")
	}
	return id.UserID, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
