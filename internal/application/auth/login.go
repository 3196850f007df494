package auth

import (
	"context"
	"strings"

	"github.com/pashto-learning-app/backend/internal/domain"
)

// Login authenticates a user and starts a new session.
// IMPORTANT: must not leak whether the email exists (avoid user enumeration).
//
// The new refresh token overwrites the stored one, so logging in on a second
// device silently ends the session on the first.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.audit(ctx, "login_failed", map[string]string{"reason": "invalid_credentials"})
			return LoginResult{}, domain.ErrInvalidCredentials()
		}
		return LoginResult{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if domain.Is(err, "invalid_credentials") {
			s.audit(ctx, "login_failed", map[string]string{"reason": "invalid_credentials"})
			return LoginResult{}, domain.ErrInvalidCredentials()
		}
		return LoginResult{}, err
	}

	claims := claimsOf(u)
	access, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.users.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return LoginResult{}, err
	}
	u.RefreshToken = refresh

	s.audit(ctx, "login_success", map[string]string{"user_id": u.ID})

	return LoginResult{
		User:   u,
		Tokens: AuthTokens{AccessToken: access, RefreshToken: refresh},
	}, nil
}
