package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// refreshCookieName must match what the refresh guard reads.
const refreshCookieName = "refresh_token"

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	sessions        *auth.SessionManager
	validator       *validator.Validate
	refreshLifetime time.Duration
}

// NewAuthHandler creates an AuthHandler. refreshLifetime bounds the
// refresh_token cookie's max age.
func NewAuthHandler(sessions *auth.SessionManager, refreshLifetime time.Duration) *AuthHandler {
	return &AuthHandler{
		sessions:        sessions,
		validator:       newValidator(),
		refreshLifetime: refreshLifetime,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.sessions.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already in use")
			return
		}
		if errors.Is(err, store.ErrInvalidEntity) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user data")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to register user", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newUserResponse(user))
}

// Login handles POST /api/auth/login. On success the refresh token is
// returned in the body and also set as an HTTP-only cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.sessions.ValidateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to authenticate user", err)
		return
	}

	pair, err := h.sessions.IssueTokenPair(r.Context(), user)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication tokens", err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	shared.RespondWithJSON(w, r, http.StatusOK, TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// RefreshToken handles POST /api/auth/refresh. The refresh guard has
// already extracted the presented token into the context; every failure
// maps to 401 so callers cannot probe why a refresh was rejected.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetRefreshToken(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Refresh token required")
		return
	}

	pair, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	shared.RespondWithJSON(w, r, http.StatusOK, TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   int(h.refreshLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
