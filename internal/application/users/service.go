package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pashto-learning-app/backend/internal/domain"
)

type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service is the plain users CRUD next to the session manager.
type Service struct {
	users  UserRepo
	hasher PasswordHasher
}

func NewService(users UserRepo, hasher PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

type CreateInput struct {
	FullName string
	Email    string
	Password string
}

// Create adds a student account. Same duplicate and hashing rules as register.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.PublicUser, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return domain.PublicUser{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return domain.PublicUser{}, domain.ErrMissingField("password")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.PublicUser{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return domain.PublicUser{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         string(domain.RoleStudent),
	})
	if err != nil {
		return domain.PublicUser{}, err
	}
	return created.Public(), nil
}

func (s *Service) List(ctx context.Context) ([]domain.PublicUser, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(all))
	for _, u := range all {
		out = append(out, u.Public())
	}
	return out, nil
}
