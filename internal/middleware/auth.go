package middleware

import (
	"context"
	"net/http"

	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/pkg/tokens"
)

// UserIDKey is the context key for the authenticated user's ID
const UserIDKey = contextKey("user_id")

// AuthMiddleware guards dashboard endpoints with JWT session tokens.
type AuthMiddleware struct {
	tokenGen *tokens.TokenGenerator
	repo     repository.Repository
}

func NewAuthMiddleware(tokenGen *tokens.TokenGenerator, repo repository.Repository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenGen: tokenGen,
		repo:     repo,
	}
}

// RequireUser validates the Bearer token and confirms the user still exists
// before passing the user ID down via context.
func (m *AuthMiddleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := httputil.ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := m.tokenGen.ValidateAccessToken(token)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		if _, err := m.repo.GetUserByID(r.Context(), claims.UserID); err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserID extracts the authenticated user ID from the context.
// Returns empty string if not present.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
