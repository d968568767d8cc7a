package storefront

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the bearer token claims the storefront API trusts once the
// token has been validated.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Role returns the role claim.
func (c *Claims) Role() string {
	if c == nil {
		return ""
	}
	return c.UserRole
}

// HasRole reports whether the claims carry role.
func (c *Claims) HasRole(role string) bool {
	return c != nil && role != "" && c.UserRole == role
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
