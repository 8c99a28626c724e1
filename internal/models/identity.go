package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the bearer token payload issued by the identity provider.
// Only the username is consumed here.
type IdentityClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Name returns the username claim, falling back to the subject.
func (c *IdentityClaims) Name() string {
	if c == nil {
		return ""
	}
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}
