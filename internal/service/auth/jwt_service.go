// Package auth provides token issuance and verification for the
// single-owner API. There are no user accounts: one configured password
// hash authenticates the owner, and tokens simply prove that login.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the owner
	// session. Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context) (string, error)

	// ValidateToken validates the provided access token string and
	// extracts the claims. Returns an error if validation fails
	// (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
