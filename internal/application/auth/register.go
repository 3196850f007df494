package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pashto-learning-app/backend/internal/domain"
	"github.com/pashto-learning-app/backend/internal/logger"
)

// Register creates an account. No tokens are issued: the user stays
// anonymous until the first Login.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return domain.User{}, domain.ErrMissingField("password")
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = string(domain.RoleStudent)
	}
	if !domain.IsValidRole(role) {
		return domain.User{}, domain.ErrInvalidRole(role)
	}

	// Cheap pre-check so duplicates don't pay for a bcrypt round.
	// Create still enforces uniqueness for the racing case.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.audit(ctx, "register", map[string]string{
		"user_id": created.ID,
		"email":   created.Email,
		"role":    created.Role,
	})

	s.requestEmailVerification(ctx, created)

	return created, nil
}

// requestEmailVerification is best-effort: the account exists either way and
// delivery belongs to the mail worker.
func (s *Service) requestEmailVerification(ctx context.Context, u domain.User) {
	if s.pub == nil {
		return
	}

	tok, err := s.tokens.IssueEmailToken(u.ID)
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("verify_email_token_failed")
		return
	}

	evt := VerifyEmailEvent{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		URL:      s.verifyEmailBaseURL + url.QueryEscape(tok),
	}
	if err := s.pub.PublishVerifyEmail(ctx, evt); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("verify_email_publish_failed")
	}
}
