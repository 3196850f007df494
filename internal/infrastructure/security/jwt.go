package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pashto-learning-app/backend/internal/application/auth"
	"github.com/pashto-learning-app/backend/internal/domain"
)

type JWTConfig struct {
	Issuer string

	AccessSecret  string
	RefreshSecret string
	EmailSecret   string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// JWTIssuer signs HS256 tokens with one key per token kind, so an access
// token never verifies as a refresh token and vice versa.
type JWTIssuer struct {
	issuer string
	keys   map[auth.TokenKind]signingKey
	now    func() time.Time
}

func NewJWTIssuer(cfg JWTConfig) *JWTIssuer {
	return &JWTIssuer{
		issuer: cfg.Issuer,
		keys: map[auth.TokenKind]signingKey{
			auth.TokenAccess:  {secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
			auth.TokenRefresh: {secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
			auth.TokenEmail:   {secret: []byte(cfg.EmailSecret), ttl: cfg.EmailTTL},
		},
		now: time.Now,
	}
}

type tokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (s *JWTIssuer) IssueAccessToken(c auth.Claims) (string, error) {
	return s.sign(auth.TokenAccess, c)
}

func (s *JWTIssuer) IssueRefreshToken(c auth.Claims) (string, error) {
	return s.sign(auth.TokenRefresh, c)
}

// IssueEmailToken carries only the user id.
func (s *JWTIssuer) IssueEmailToken(userID string) (string, error) {
	return s.sign(auth.TokenEmail, auth.Claims{UserID: userID})
}

func (s *JWTIssuer) sign(kind auth.TokenKind, c auth.Claims) (string, error) {
	key, ok := s.keys[kind]
	if !ok {
		return "", domain.ErrTokenSignFailed(nil)
	}

	now := s.now()
	claims := tokenClaims{
		ID:    c.UserID,
		Email: c.Email,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
			// two logins in the same second must still yield distinct tokens
			ID: uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verify never distinguishes expiry from any other failure.
func (s *JWTIssuer) Verify(token string, kind auth.TokenKind) (auth.Claims, error) {
	key, ok := s.keys[kind]
	if !ok || token == "" {
		return auth.Claims{}, domain.ErrTokenInvalid()
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return key.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return auth.Claims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return auth.Claims{}, domain.ErrTokenInvalid()
	}

	return auth.Claims{
		UserID:    claims.ID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
