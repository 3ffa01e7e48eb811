// Package authctx carries the authenticated caller through request
// contexts. It is its own package so both handler packages can read
// the identity the auth middleware injected without importing each
// other.
package authctx

import "context"

type contextKey string

const (
	userIDKey contextKey = "userID"
	tokenKey  contextKey = "bearerToken"
)

// WithIdentity returns a context carrying the user ID and the raw
// bearer token. The token is kept so upstream calls can forward it.
func WithIdentity(ctx context.Context, userID, token string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, tokenKey, token)
}

// UserID extracts the authenticated user ID, or "" when absent.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// Token extracts the raw bearer token, or "" when absent.
func Token(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}
