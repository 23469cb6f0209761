package server

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/types"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	validator   *validator.Validate
	logger      *logrus.Entry
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, v *validator.Validate, logger *logrus.Entry) *AuthHandler {
	if v == nil {
		v = newValidator()
	}
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		validator:   v,
		logger:      logger,
	}
}

// Register handles account registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeAndValidate(w, r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeAndValidate(w, r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("failed to generate token: %w", err))
		return
	}
	writeJSON(w, h.logger, status, types.LoginResponse{User: user, Token: token})
}

// UpdatePasswordWithUserID handles password update requests with an explicit user ID.
func (h *AuthHandler) UpdatePasswordWithUserID(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req types.UpdatePasswordRequest
	if err := decodeAndValidate(w, r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}
