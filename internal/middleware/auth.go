// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/collabers/backend/internal/auth"
	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/services/user_services"
)

// NewJWTMiddleware validates a Bearer access token and loads the account into
// the request context. The token's version claim must match the account's
// current token_version, so a password change cuts off old sessions here.
func NewJWTMiddleware(issuer *auth.TokenIssuer, accounts *user_services.AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing or malformed authorization header")
				return
			}

			claims, userID, err := issuer.Decode(strings.TrimPrefix(header, "Bearer "))
			if err != nil || claims.TokenType != auth.TokenTypeAccess {
				unauthorized(w, "invalid or expired token")
				return
			}

			account, err := accounts.GetByID(r.Context(), userID)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			if claims.TokenVersion != account.TokenVersion || !account.IsActive() {
				unauthorized(w, "invalid or expired token")
				return
			}

			// Best effort; the request proceeds either way.
			_ = accounts.TouchLastActive(r.Context(), userID)

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated account placed by the JWT
// middleware, or nil for unauthenticated requests.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserKey).(*domain.User)
	return user
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
