package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// Token flavor names carried in the type claim.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// hmacJWTService is an implementation of JWTService using HMAC-SHA256
// signing with a separate secret per token flavor.
type hmacJWTService struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	timeFunc        func() time.Time // Injectable for testing
	clockSkew       time.Duration    // Leeway for clock drift during validation
}

// jwtCustomClaims defines the claims structure embedded in signed tokens.
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	Email     string    `json:"email"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// Ensure hmacJWTService implements JWTService
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a JWT service from the auth configuration.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("token signing secrets must not be empty")
	}

	return &hmacJWTService{
		accessSecret:    []byte(cfg.AccessTokenSecret),
		refreshSecret:   []byte(cfg.RefreshTokenSecret),
		accessLifetime:  time.Duration(cfg.AccessTokenLifetimeMinutes) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:        time.Now,
		clockSkew:       2 * time.Minute,
	}, nil
}

// GenerateAccessToken creates a signed access token for the given user.
func (s *hmacJWTService) GenerateAccessToken(
	ctx context.Context,
	userID uuid.UUID,
	email string,
) (string, error) {
	return s.generate(ctx, userID, email, tokenTypeAccess, s.accessSecret, s.accessLifetime)
}

// GenerateRefreshToken creates a signed refresh token for the given user.
func (s *hmacJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	email string,
) (string, error) {
	return s.generate(ctx, userID, email, tokenTypeRefresh, s.refreshSecret, s.refreshLifetime)
}

// generate builds and signs a token of the given flavor. Each token gets a
// fresh jti, so two tokens issued for the same user in the same instant are
// still distinct strings (refresh rotation depends on this).
func (s *hmacJWTService) generate(
	ctx context.Context,
	userID uuid.UUID,
	email string,
	tokenType string,
	secret []byte,
	lifetime time.Duration,
) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := jwtCustomClaims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		log.Error("failed to sign JWT token",
			"error", err,
			"user_id", userID,
			"token_type", tokenType)
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return signedToken, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *hmacJWTService) ValidateAccessToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	return s.validate(ctx, tokenString, tokenTypeAccess, s.accessSecret, ErrInvalidToken, ErrExpiredToken)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
func (s *hmacJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	return s.validate(ctx, tokenString, tokenTypeRefresh, s.refreshSecret, ErrInvalidRefreshToken, ErrExpiredRefreshToken)
}

// validate parses tokenString against the secret for the expected flavor.
// All parsing failures collapse into invalidErr except expiry, which maps
// to expiredErr; a structurally valid token of the wrong flavor fails with
// ErrWrongTokenType.
func (s *hmacJWTService) validate(
	ctx context.Context,
	tokenString string,
	expectedType string,
	secret []byte,
	invalidErr, expiredErr error,
) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
		parserOpts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired",
				"token_type", expectedType)
			return nil, expiredErr
		}
		log.Debug("token validation failed",
			"error", err,
			"token_type", expectedType)
		return nil, invalidErr
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims",
			"token_type", expectedType)
		return nil, invalidErr
	}

	if claims.TokenType != expectedType {
		log.Debug("token validation failed: wrong token type",
			"expected", expectedType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	return &Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
