package auth

import "context"

type ctxKey string

const claimsKey ctxKey = "identityClaims"

// Claims is the identity a verified token resolves to.
type Claims struct {
	UserID   uint
	Username string
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// FromContext returns the claims attached by the middleware and whether a
// verified identity is present at all.
func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

// Username returns the authenticated username, or "" for anonymous callers.
func Username(ctx context.Context) string {
	c, _ := FromContext(ctx)
	return c.Username
}
