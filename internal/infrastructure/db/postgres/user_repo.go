package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pashto-learning-app/backend/internal/domain"
)

const pgUniqueViolation = "23505"

// UserRepo is the Postgres credential store. Emails are trimmed but
// otherwise matched exactly.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg string) (domain.User, error) {
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

// parseID turns a caller-supplied id into the primary-key form. Anything
// that is not a uuid cannot name a row.
func parseID(id string) (string, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", domain.ErrUserNotFound()
	}
	return uid.String(), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, uid)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleStudent)
	}

	const q = `
INSERT INTO users (id, full_name, email, password_hash, role, email_verified)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.Role, u.EmailVerified,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

func (r *UserRepo) SetRefreshToken(ctx context.Context, userID string, token string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}

	const q = `UPDATE users SET refresh_token = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, uid, sql.NullString{String: token, Valid: token != ""})
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) ClearRefreshToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}

	const q = `UPDATE users SET refresh_token = NULL WHERE refresh_token = $1`

	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *UserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}

	const q = `UPDATE users SET email_verified = TRUE WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, uid)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		ur, err := scanUser(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, ur.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// Ping backs the readiness probe.
func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
