package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pashto-learning-app/backend/internal/application/auth"
	"github.com/pashto-learning-app/backend/internal/domain"
)

func newTestIssuer() *JWTIssuer {
	return NewJWTIssuer(JWTConfig{
		Issuer:        "pashto-learning",
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		EmailSecret:   "email-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		EmailTTL:      24 * time.Hour,
	})
}

var aliClaims = auth.Claims{UserID: "u1", Email: "ali@example.com", Role: "student"}

func requireTokenInvalid(t *testing.T, err error) {
	t.Helper()
	if !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestJWTIssuer_AccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	tok, err := s.IssueAccessToken(aliClaims)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	got, err := s.Verify(tok, auth.TokenAccess)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if got.UserID != "u1" || got.Email != "ali@example.com" || got.Role != "student" {
		t.Fatalf("unexpected claims: %+v", got)
	}
	if d := time.Until(got.ExpiresAt); d <= 14*time.Minute || d > 15*time.Minute {
		t.Fatalf("expected ~15m expiry, got %v", d)
	}
}

func TestJWTIssuer_RefreshToken_SevenDays(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	tok, err := s.IssueRefreshToken(aliClaims)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}
	got, err := s.Verify(tok, auth.TokenRefresh)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if d := time.Until(got.ExpiresAt); d <= 7*24*time.Hour-time.Minute {
		t.Fatalf("expected ~7d expiry, got %v", d)
	}
}

func TestJWTIssuer_EmailToken_CarriesOnlyID(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	tok, err := s.IssueEmailToken("u1")
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}
	got, err := s.Verify(tok, auth.TokenEmail)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if got.UserID != "u1" || got.Email != "" || got.Role != "" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestJWTIssuer_KindsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	access, _ := s.IssueAccessToken(aliClaims)
	refresh, _ := s.IssueRefreshToken(aliClaims)
	email, _ := s.IssueEmailToken("u1")

	_, err := s.Verify(access, auth.TokenRefresh)
	requireTokenInvalid(t, err)
	_, err = s.Verify(refresh, auth.TokenAccess)
	requireTokenInvalid(t, err)
	_, err = s.Verify(email, auth.TokenAccess)
	requireTokenInvalid(t, err)
	_, err = s.Verify(access, auth.TokenEmail)
	requireTokenInvalid(t, err)
}

func TestJWTIssuer_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	a, _ := s.IssueRefreshToken(aliClaims)
	b, _ := s.IssueRefreshToken(aliClaims)
	if a == b {
		t.Fatalf("expected distinct tokens for the same instant")
	}
}

func TestJWTIssuer_Expired_IsPlainTokenInvalid(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	issuedAt := time.Now().Add(-16 * time.Minute)
	s.now = func() time.Time { return issuedAt }

	tok, err := s.IssueAccessToken(aliClaims)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	s.now = time.Now
	_, err = s.Verify(tok, auth.TokenAccess)
	requireTokenInvalid(t, err)
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	other := NewJWTIssuer(JWTConfig{
		Issuer:       "pashto-learning",
		AccessSecret: "someone-else",
		AccessTTL:    time.Minute,
	})
	tok, _ := other.IssueAccessToken(aliClaims)

	_, err := newTestIssuer().Verify(tok, auth.TokenAccess)
	requireTokenInvalid(t, err)
}

func TestJWTIssuer_WrongIssuer(t *testing.T) {
	t.Parallel()

	other := newTestIssuer()
	other.issuer = "someone-else"
	tok, _ := other.IssueAccessToken(aliClaims)

	_, err := newTestIssuer().Verify(tok, auth.TokenAccess)
	requireTokenInvalid(t, err)
}

func TestJWTIssuer_AlgNone_Rejected(t *testing.T) {
	t.Parallel()

	claims := jwt.MapClaims{
		"id":   "u1",
		"role": "admin",
		"iss":  "pashto-learning",
		"sub":  "u1",
		"exp":  time.Now().Add(time.Minute).Unix(),
		"iat":  time.Now().Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected signing err: %v", err)
	}

	_, err = newTestIssuer().Verify(unsigned, auth.TokenAccess)
	requireTokenInvalid(t, err)
}

func TestJWTIssuer_MissingExpiry_Rejected(t *testing.T) {
	t.Parallel()

	claims := jwt.MapClaims{"id": "u1", "iss": "pashto-learning"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	_, err = newTestIssuer().Verify(tok, auth.TokenAccess)
	requireTokenInvalid(t, err)
}

func TestJWTIssuer_Garbage(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		_, err := s.Verify(tok, auth.TokenAccess)
		requireTokenInvalid(t, err)
	}
}

func TestJWTIssuer_UnknownKind(t *testing.T) {
	t.Parallel()

	s := newTestIssuer()
	tok, _ := s.IssueAccessToken(aliClaims)
	_, err := s.Verify(tok, auth.TokenKind("bogus"))
	requireTokenInvalid(t, err)
}
