package middleware

import "context"

type principalKey struct{}

// principal is the caller established by Auth from a verified access token.
type principal struct {
	userID string
	role   string
}

func WithUser(ctx context.Context, userID, role string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal{userID: userID, role: role})
}

func caller(ctx context.Context) principal {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p
}

// UserIDFromContext reports false for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id := caller(ctx).userID
	return id, id != ""
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role := caller(ctx).role
	return role, role != ""
}
