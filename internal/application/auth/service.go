package auth

import (
	"context"

	"github.com/pashto-learning-app/backend/internal/domain"
)

// Service is the session manager: registration, login, refresh and logout
// over a single refresh token per user.
//
// Concurrent operations on the same user are not serialized here; each call
// is a sequence of independent store reads/writes and relies on per-row
// atomicity only. Two racing logins leave whichever token was written last.
type Service struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
	pub    EventPublisher

	audit func(ctx context.Context, action string, fields map[string]string)

	// e.g. https://app.example/verify-email?token=
	verifyEmailBaseURL string
}

type Config struct {
	VerifyEmailBaseURL string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	tokens TokenIssuer,
	pub EventPublisher,
	cfg Config,
) *Service {
	return &Service{
		users:              users,
		hasher:             hasher,
		tokens:             tokens,
		pub:                pub,
		audit:              func(context.Context, string, map[string]string) {},
		verifyEmailBaseURL: cfg.VerifyEmailBaseURL,
	}
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// AuthTokens is the login output. The refresh token is returned to the
// caller and also persisted as the user's only live session.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string // optional, defaults to student
}

type LoginResult struct {
	User   domain.User
	Tokens AuthTokens
}

func claimsOf(u domain.User) Claims {
	return Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
}
