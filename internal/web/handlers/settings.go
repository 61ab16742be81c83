package handlers

import (
	"encoding/json"
	"net/http"

	"nautilus/internal/web/middleware"
)

// SettingsHandler exposes per-session UI preferences.
type SettingsHandler struct {
	sessionManager *middleware.SessionManager
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(sm *middleware.SessionManager) *SettingsHandler {
	return &SettingsHandler{sessionManager: sm}
}

// SettingsResponse is the settings payload.
type SettingsResponse struct {
	Username string `json:"username"`
	Theme    string `json:"theme"`
}

// Get returns the session user's settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, SettingsResponse{
		Username: session.Username,
		Theme:    session.Theme,
	})
}

// Update changes the session theme.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		respondError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}

	h.sessionManager.SetTheme(session.ID, req.Theme)
	respondJSON(w, http.StatusOK, SettingsResponse{
		Username: session.Username,
		Theme:    req.Theme,
	})
}
