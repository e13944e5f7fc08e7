package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/learnhub/learnadmin/internal/constants"
)

// Claims is what the console reads out of an access token. The signature
// is not verified client-side; the backend remains the authority.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	ID    string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token without verifying it.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoCredentials
	}

	var c accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("access token is not a JWT: %w", err)
	}

	out := &Claims{
		Subject: c.Subject,
		Email:   c.Email,
		Role:    c.Role,
	}
	if out.Subject == "" {
		out.Subject = c.ID
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}

// Expired reports whether the token is expired at now, treating tokens that
// expire within constants.TokenExpirySkew as already expired. Tokens without
// an exp claim never expire client-side.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(constants.TokenExpirySkew).Before(c.ExpiresAt)
}

// ExpiresIn returns the remaining lifetime, or 0 when unknown or expired.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// IsMalformed reports whether err came from a token that could not be parsed.
func IsMalformed(err error) bool {
	return errors.Is(err, jwt.ErrTokenMalformed)
}
