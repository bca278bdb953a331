package handlers

import (
	"encoding/json"
	"net/http"

	"dispatchBack/internal/models"
	services "dispatchBack/internal/services"
)

type ChatHandler struct {
	ChatService *services.ChatService
	UserService *services.AuthService
}

// GetChatHistory returns the ordered message sequence for a request, used to
// backfill a client's view before live websocket pushes arrive.
func (h *ChatHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get(":request_id")
	if requestID == "" {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	messages, err := h.ChatService.History(r.Context(), requestID)
	if err != nil {
		http.Error(w, "Failed to fetch chat history", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	json.NewEncoder(w).Encode(messages)
}

// PostMessage is the REST fallback for clients without a live socket.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get(":request_id")
	userID, _ := r.Context().Value("user_id").(string)
	role, _ := r.Context().Value("role").(string)

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UserRepo.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message, err := h.ChatService.SaveMessage(r.Context(), requestID, user, role, payload.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}
