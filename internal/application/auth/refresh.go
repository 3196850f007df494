package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/pashto-learning-app/backend/internal/domain"
)

// Refresh exchanges the user's live refresh token for a new access token.
// The refresh token is not rotated and stored state is left untouched.
//
// A token that verifies cryptographically is still rejected unless it is the
// exact value currently stored for its user; that check is what makes
// Logout and re-Login revoke older tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", domain.ErrTokenMissing()
	}

	claims, err := s.tokens.Verify(refreshToken, TokenRefresh)
	if err != nil {
		return "", domain.ErrRefreshTokenInvalid()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return "", domain.ErrRefreshTokenInvalid()
		}
		return "", err
	}

	if u.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(refreshToken)) != 1 {
		s.audit(ctx, "refresh_rejected", map[string]string{"user_id": u.ID, "reason": "not_current"})
		return "", domain.ErrRefreshTokenInvalid()
	}

	// Claims come from the stored row, not the presented token.
	access, err := s.tokens.IssueAccessToken(claimsOf(u))
	if err != nil {
		return "", err
	}

	s.audit(ctx, "token_refreshed", map[string]string{"user_id": u.ID})
	return access, nil
}
