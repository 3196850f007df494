package seed

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pashto-learning-app/backend/internal/domain"
)

type Hasher interface {
	Hash(password string) (string, error)
}

type Repo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

type Account struct {
	FullName string
	Email    string
	Password string
	Role     domain.Role
	Verified bool
}

// DevAccounts are created on every dev boot; duplicates are ignored.
var DevAccounts = []Account{
	{FullName: "Admin", Email: "admin@example.com", Password: "AdminPassword123!", Role: domain.RoleAdmin, Verified: true},
	{FullName: "Student", Email: "student@example.com", Password: "StudentPassword123!", Role: domain.RoleStudent},
}

// Users creates the given accounts and returns how many were new.
func Users(ctx context.Context, repo Repo, hasher Hasher, accounts []Account, log zerolog.Logger) int {
	created := 0
	for _, a := range accounts {
		hash, err := hasher.Hash(a.Password)
		if err != nil {
			log.Warn().Err(err).Str("email", a.Email).Msg("seed hash failed")
			continue
		}

		_, err = repo.Create(ctx, domain.User{
			ID:            uuid.NewString(),
			FullName:      a.FullName,
			Email:         a.Email,
			PasswordHash:  hash,
			Role:          string(a.Role),
			EmailVerified: a.Verified,
		})
		switch {
		case err == nil:
			created++
		case domain.Is(err, "email_already_exists"):
			// restart safe
		default:
			log.Warn().Err(err).Str("email", a.Email).Msg("seed create failed")
		}
	}

	log.Info().Int("created", created).Msg("dev users seeded")
	return created
}
