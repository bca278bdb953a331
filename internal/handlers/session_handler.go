package handlers

import (
	"encoding/json"
	"net/http"

	services "dispatchBack/internal/services"
)

type SessionHandler struct {
	AuthService *services.AuthService
}

// Refresh rotates a refresh token and issues a fresh access token.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.RefreshToken == "" {
		http.Error(w, "Refresh token missing", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthService.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(tokens)
}
