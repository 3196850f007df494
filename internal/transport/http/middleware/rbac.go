package middleware

import (
	"context"
	"net/http"

	"github.com/pashto-learning-app/backend/internal/domain"
)

// RequireAtLeast enforces role hierarchy: admin >= instructor >= student.
// Assumes Auth() middleware has already injected role into context.
func RequireAtLeast(minRole string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			if !domain.IsValidRole(role) || !domain.IsValidRole(minRole) {
				writeErr(w, r, domain.ErrForbidden())
				return
			}

			if domain.RoleRank(role) < domain.RoleRank(minRole) {
				writeErr(w, r, domain.ErrInsufficientRole(minRole))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// RequireEmailVerified reads the caller from the store instead of trusting
// the token, so a verification done after login is honored immediately.
func RequireEmailVerified(users UserReader, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if domain.Is(err, "user_not_found") {
					// deleted after the token was issued
					writeErr(w, r, domain.ErrTokenInvalid())
					return
				}
				writeErr(w, r, err)
				return
			}
			if !u.EmailVerified {
				writeErr(w, r, domain.ErrEmailNotVerified())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
