package auth

import (
	"context"
	"strconv"
	"strings"
)

// Logout clears the stored refresh token on whichever user holds exactly
// this value. Unknown, stale or empty tokens are a silent no-op so callers
// can't probe whether a token was ever valid.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	n, err := s.users.ClearRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	s.audit(ctx, "logout", map[string]string{"revoked": strconv.FormatInt(n, 10)})
	return nil
}
