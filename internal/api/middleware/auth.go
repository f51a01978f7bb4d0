package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// RefreshTokenContextKey holds the refresh token extracted by RequireRefreshToken.
const RefreshTokenContextKey shared.ContextKey = "refreshToken"

// refreshCookieName is the HTTP-only cookie carrying the refresh token.
const refreshCookieName = "refresh_token"

// AuthMiddleware guards routes with JWT validation.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates an AuthMiddleware backed by the given JWT service.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate validates the Bearer access token from the Authorization
// header and stores the authenticated user ID in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate access token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRefreshToken extracts the refresh token from the refresh_token
// cookie, falling back to the JSON body, and stores it in the request
// context. Requests presenting no token at all are rejected here; the
// token is validated downstream so that every rejection looks the same.
func (m *AuthMiddleware) RequireRefreshToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := refreshTokenFromRequest(r)
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Refresh token required")
			return
		}

		ctx := context.WithValue(r.Context(), RefreshTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return ""
	}
	return body.RefreshToken
}

// GetUserID extracts the authenticated user ID placed in the context by
// Authenticate.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetRefreshToken extracts the refresh token placed in the context by
// RequireRefreshToken.
func GetRefreshToken(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(RefreshTokenContextKey).(string)
	return token, ok
}
