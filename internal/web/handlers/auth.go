package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"nautilus/internal/users"
	"nautilus/internal/web/middleware"
)

// AuthHandler handles login, sign-up and session status endpoints.
type AuthHandler struct {
	registry       *users.Registry
	sessionManager *middleware.SessionManager
	logger         *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(registry *users.Registry, sm *middleware.SessionManager, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		registry:       registry,
		sessionManager: sm,
		logger:         logger,
	}
}

// credentialsRequest represents a login or sign-up request body.
type credentialsRequest struct {
	username string
	password string
}

func (c *credentialsRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal credentials: %w", err)
	}
	c.username = raw["username"]
	c.password = raw["password"]
	return nil
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Username  string `json:"username,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Login handles user login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.username == "" || req.password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	ok, err := h.registry.Authenticate(req.username, req.password)
	if err != nil {
		h.logger.Error("authentication lookup failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to check credentials")
		return
	}
	if !ok {
		respondJSON(w, http.StatusUnauthorized, LoginResponse{
			Success: false,
			Error:   "invalid credentials",
		})
		return
	}

	session, err := h.sessionManager.CreateSession(req.username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.sessionManager.SetSessionCookie(w, session)

	respondJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Username:  session.Username,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

// Register handles account creation.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	switch err := h.registry.Register(req.username, req.password); {
	case err == nil:
	case errors.Is(err, users.ErrEmptyField):
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	case errors.Is(err, users.ErrInvalidUsername):
		respondError(w, http.StatusBadRequest, "username contains unsupported characters")
		return
	case errors.Is(err, users.ErrExists):
		respondError(w, http.StatusConflict, "username already exists")
		return
	default:
		h.logger.Error("registration failed",
			zap.String("username", sanitizeForLog(req.username)),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"username": req.username,
	})
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessionManager.GetSessionFromRequest(r); session != nil {
		h.sessionManager.DeleteSession(session.ID)
	}
	h.sessionManager.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// StatusResponse represents the auth status response.
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

// Status checks if the user is authenticated by validating the session.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := h.sessionManager.GetSessionFromRequest(r)
	if session == nil {
		respondJSON(w, http.StatusOK, StatusResponse{Authenticated: false})
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{
		Authenticated: true,
		Username:      session.Username,
		ExpiresAt:     session.ExpiresAt.Format(time.RFC3339),
	})
}
