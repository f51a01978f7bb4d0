package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for issuing and verifying the two JWT
// flavors used by the application. Access tokens authorize task operations;
// refresh tokens are used solely to mint new token pairs. The flavors are
// signed with independent secrets and additionally carry a type claim, so a
// token of one flavor never verifies as the other.
type JWTService interface {
	// GenerateAccessToken creates a signed, short-lived access token for
	// the given user.
	GenerateAccessToken(ctx context.Context, userID uuid.UUID, email string) (string, error)

	// ValidateAccessToken verifies tokenString as an access token and
	// extracts its claims. Fails with ErrExpiredToken, ErrInvalidToken or
	// ErrWrongTokenType.
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed, long-lived refresh token for
	// the given user.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID, email string) (string, error)

	// ValidateRefreshToken verifies tokenString as a refresh token and
	// extracts its claims. Fails with ErrExpiredRefreshToken,
	// ErrInvalidRefreshToken or ErrWrongTokenType.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded payload of a validated token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Email is the user's email address at issuance time.
	Email string `json:"email,omitempty"`

	// TokenType indicates the flavor of the token ("access" or "refresh").
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
