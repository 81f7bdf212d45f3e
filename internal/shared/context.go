package shared

import "context"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID int64
	Role   string
	// TokenID is the jti of the bearer token, used for revocation.
	TokenID string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok && p.UserID != 0
}
