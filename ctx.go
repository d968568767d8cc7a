package storefront

import (
	"context"
	"strings"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the Claims in the given context
func WithClaimsContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the Claims from the standard context
func GetClaims(ctx context.Context) (*Claims, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(claimsCtxKey).(*Claims)
	return raw, ok && raw != nil
}

// ContextCustomer resolves the customer from the claims stored in the
// request context by the JWT middleware.
type ContextCustomer struct{}

var _ CustomerResolver = ContextCustomer{}

// GetUserEmail returns the email claim, or "" for anonymous requests.
func (ContextCustomer) GetUserEmail(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(claims.Email)
}

// GetUserID returns the subject claim, or "" for anonymous requests.
func (ContextCustomer) GetUserID(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok {
		return ""
	}
	return claims.UserID()
}
