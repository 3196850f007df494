package auth

import (
	"context"
	"time"

	"github.com/pashto-learning-app/backend/internal/domain"
)

/*
UserRepo
--------
Persistence port for users (the credential store).
Only describes WHAT the session manager needs, not HOW it's stored.
The stored refresh token is the single source of truth for "who is logged in".
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// SetRefreshToken overwrites the user's current refresh token.
	SetRefreshToken(ctx context.Context, userID string, token string) error
	// ClearRefreshToken nulls the refresh token on whichever user holds
	// exactly this value and reports how many rows changed (0 is fine).
	ClearRefreshToken(ctx context.Context, token string) (int64, error)

	SetEmailVerified(ctx context.Context, userID string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
Compare returns domain.ErrInvalidCredentials on mismatch and an internal
error for anything else (corrupt digest, etc).
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

/*
TokenIssuer
-----------
Issues and verifies signed, time-bounded tokens. Each TokenKind is signed
with its own secret, so a token of one kind never verifies as another.
*/
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
	TokenEmail   TokenKind = "email"
)

// Claims is the identity payload embedded in access and refresh tokens.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	IssueAccessToken(c Claims) (string, error)
	IssueRefreshToken(c Claims) (string, error)
	IssueEmailToken(userID string) (string, error)
	// Verify returns domain.ErrTokenInvalid for every failure, expiry included.
	Verify(token string, kind TokenKind) (Claims, error)
}

/*
EventPublisher
--------------
Publishes events to RabbitMQ.
A mail worker consumes these and sends the verification email;
this service does NOT send emails directly.
*/
type EventPublisher interface {
	PublishVerifyEmail(ctx context.Context, evt VerifyEmailEvent) error
}

type VerifyEmailEvent struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	URL      string `json:"url"`
}
