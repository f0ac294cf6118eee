package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests. The tracker
// is single-owner: login verifies one configured password hash and
// issues a bearer token.
type AuthHandler struct {
	authConfig       config.AuthConfig
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	authConfig config.AuthConfig,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		authConfig:       authConfig,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		validator:        validator.New(),
	}
}

// Login handles the /auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.passwordVerifier.Compare(h.authConfig.OwnerPasswordHash, req.Password); err != nil {
		// A mismatch and a malformed hash look the same to the caller.
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context())
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	expiresAt := time.Now().
		Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute).
		UTC().
		Format(time.RFC3339)

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
