package auth

import (
	"context"
	"strings"

	"github.com/pashto-learning-app/backend/internal/domain"
)

// VerifyEmail consumes a verification link token.
// alreadyVerified is true when the account was verified before this call.
func (s *Service) VerifyEmail(ctx context.Context, token string) (alreadyVerified bool, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, domain.ErrVerifyTokenInvalid()
	}

	claims, err := s.tokens.Verify(token, TokenEmail)
	if err != nil {
		return false, domain.ErrVerifyTokenInvalid()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return false, err
	}
	if u.EmailVerified {
		return true, nil
	}

	if err := s.users.SetEmailVerified(ctx, u.ID); err != nil {
		return false, err
	}

	s.audit(ctx, "email_verified", map[string]string{"user_id": u.ID})
	return false, nil
}
