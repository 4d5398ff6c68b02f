package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/akshatp/pgdesk/internal/model"
)

var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth enforces authentication on protected routes.
//
// It reads the token from the Authorization header ("Bearer <token>"),
// verifies it, and stores the decoded Identity in the request context.
// A missing, malformed, or expired token stops the chain with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces that the authenticated identity holds one of the
// allowed roles. Must run after RequireAuth. The check is an exact match
// against the role enum. There is no role hierarchy.
func RequireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			for _, role := range allowed {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"forbidden","message":"insufficient role for this operation"}`, http.StatusForbidden)
		})
	}
}

// IdentityFromContext retrieves the authenticated identity from the request
// context. The second return is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != 0
}

// extractIdentity reads and verifies the bearer token from the
// Authorization header.
func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return Identity{}, errNoToken
	}

	return tokens.Verify(strings.TrimPrefix(header, prefix))
}
