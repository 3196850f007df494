package postgres

import (
	"database/sql"
	"time"

	"github.com/pashto-learning-app/backend/internal/domain"
)

const userColumns = `id, full_name, email, password_hash, role, refresh_token, email_verified, created_at`

type userRow struct {
	ID            string
	FullName      string
	Email         string
	PasswordHash  string
	Role          string
	RefreshToken  sql.NullString
	EmailVerified bool
	CreatedAt     time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.FullName,
		&ur.Email,
		&ur.PasswordHash,
		&ur.Role,
		&ur.RefreshToken,
		&ur.EmailVerified,
		&ur.CreatedAt,
	)
	return ur, err
}

func (ur userRow) toDomain() domain.User {
	return domain.User{
		ID:            ur.ID,
		FullName:      ur.FullName,
		Email:         ur.Email,
		PasswordHash:  ur.PasswordHash,
		Role:          ur.Role,
		RefreshToken:  ur.RefreshToken.String,
		EmailVerified: ur.EmailVerified,
		CreatedAt:     ur.CreatedAt,
	}
}
