package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionManager orchestrates the authentication session lifecycle:
// registration, credential validation, token issuance and refresh-token
// rotation. It owns the state transitions; credential persistence is
// delegated to the UserStore and token mechanics to the JWTService.
type SessionManager struct {
	userStore  store.UserStore
	jwtService JWTService
	hasher     PasswordHasher
	verifier   PasswordVerifier
}

// NewSessionManager creates a SessionManager with the given dependencies.
func NewSessionManager(
	userStore store.UserStore,
	jwtService JWTService,
	hasher PasswordHasher,
	verifier PasswordVerifier,
) *SessionManager {
	return &SessionManager{
		userStore:  userStore,
		jwtService: jwtService,
		hasher:     hasher,
		verifier:   verifier,
	}
}

// Register hashes the password and persists a new user.
// Returns store.ErrEmailExists if the email is already taken.
func (m *SessionManager) Register(
	ctx context.Context,
	email, password, name string,
) (*domain.User, error) {
	hashed, err := m.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(email, name, hashed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	if err := m.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ValidateCredentials checks an email/password pair against the store.
// Unknown email and wrong password both fail with ErrInvalidCredentials so
// the two cases cannot be told apart; store outages surface as-is.
func (m *SessionManager) ValidateCredentials(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	user, err := m.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := m.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueTokenPair issues a fresh access/refresh token pair for the user.
func (m *SessionManager) IssueTokenPair(
	ctx context.Context,
	user *domain.User,
) (*TokenPair, error) {
	accessToken, err := m.jwtService.GenerateAccessToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := m.jwtService.GenerateRefreshToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh verifies the presented refresh token, re-resolves the user (a
// user deleted since issuance must not be able to refresh) and issues a
// brand-new token pair, rotating the refresh token. Every failure on this
// path folds into ErrUnauthorized; the caller never learns why a refresh
// was rejected.
func (m *SessionManager) Refresh(
	ctx context.Context,
	refreshToken string,
) (*TokenPair, error) {
	log := logger.FromContext(ctx)

	claims, err := m.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		log.Debug("refresh rejected: token validation failed", "error", err)
		return nil, ErrUnauthorized
	}

	user, err := m.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		log.Debug("refresh rejected: user lookup failed",
			"error", err,
			"user_id", claims.UserID)
		return nil, ErrUnauthorized
	}

	pair, err := m.IssueTokenPair(ctx, user)
	if err != nil {
		log.Error("refresh failed: token issuance error",
			"error", err,
			"user_id", user.ID)
		return nil, ErrUnauthorized
	}

	return pair, nil
}
