package audit

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	pkgctx "github.com/pashto-learning-app/backend/internal/pkg/context"
)

// Logger writes structured audit lines for auth business events.
// Passwords, hashes and tokens are never passed in here.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

func (l *Logger) Registered(ctx context.Context, userID, email, role string) {
	l.log.Info().
		Str("action", "register").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("role", role).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User registered")
}

func (l *Logger) LoginSuccess(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User logged in")
}

func (l *Logger) LoginFailed(ctx context.Context, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("reason", reason).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

func (l *Logger) TokenRefreshed(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "token_refreshed").
		Str("user_id", userID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Access token refreshed")
}

func (l *Logger) RefreshRejected(ctx context.Context, userID, reason string) {
	l.log.Warn().
		Str("action", "refresh_rejected").
		Str("user_id", userID).
		Str("reason", reason).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Refresh token rejected")
}

func (l *Logger) Logout(ctx context.Context, revoked string) {
	l.log.Info().
		Str("action", "logout").
		Str("revoked", revoked).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User logged out")
}

func (l *Logger) EmailVerified(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "email_verified").
		Str("user_id", userID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Email verified")
}

// Hook adapts the logger to auth.Service.WithAudit.
func (l *Logger) Hook() func(ctx context.Context, action string, fields map[string]string) {
	return func(ctx context.Context, action string, f map[string]string) {
		switch action {
		case "register":
			l.Registered(ctx, f["user_id"], f["email"], f["role"])
		case "login_success":
			l.LoginSuccess(ctx, f["user_id"])
		case "login_failed":
			l.LoginFailed(ctx, f["reason"])
		case "token_refreshed":
			l.TokenRefreshed(ctx, f["user_id"])
		case "refresh_rejected":
			l.RefreshRejected(ctx, f["user_id"], f["reason"])
		case "logout":
			l.Logout(ctx, f["revoked"])
		case "email_verified":
			l.EmailVerified(ctx, f["user_id"])
		default:
			ev := l.log.Info().Str("action", action)
			for k, v := range f {
				ev = ev.Str(k, v)
			}
			ev.Str("request_id", pkgctx.GetRequestID(ctx)).Msg("Audit event")
		}
	}
}

// maskEmail keeps the first two characters of the local part and the domain.
// It counts runes so a non-ASCII address is never cut mid-character.
func maskEmail(email string) string {
	if utf8.RuneCountInString(email) < 5 {
		return "***"
	}
	local, host, hasAt := strings.Cut(email, "@")
	lr := []rune(local)
	masked := string(lr[:min(2, len(lr))]) + "***"
	if !hasAt {
		return masked
	}
	return masked + "@" + host
}
