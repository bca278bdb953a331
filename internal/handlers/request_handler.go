package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dispatchBack/internal/models"
	services "dispatchBack/internal/services"
)

type RequestHandler struct {
	RequestService *services.RequestService
}

type createRequestPayload struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    struct {
		Address string   `json:"address"`
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
	} `json:"location"`
}

func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Location.Address == "" || payload.Location.Lat == nil || payload.Location.Lng == nil {
		http.Error(w, "Location details are required", http.StatusBadRequest)
		return
	}

	location := models.RequestLocation{
		Address: payload.Location.Address,
		Lat:     *payload.Location.Lat,
		Lng:     *payload.Location.Lng,
	}
	request, err := h.RequestService.CreateRequest(r.Context(), userID, payload.Category, payload.Description, location)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

func (h *RequestHandler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	requests, err := h.RequestService.ListByRequester(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to fetch requests", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(requests)
}

// GetPendingRequests lists unassigned requests for provider discovery.
func (h *RequestHandler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.RequestService.ListUnassignedPending(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch pending requests", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(requests)
}

// GetActiveRequest returns the provider's single accepted or in-progress request.
func (h *RequestHandler) GetActiveRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	request, err := h.RequestService.FindActiveForProvider(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			http.Error(w, "No active request found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch active request", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(request)
}

func (h *RequestHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	requestID := r.URL.Query().Get(":id")
	if requestID == "" {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	request, err := h.RequestService.AcceptRequest(r.Context(), requestID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(request)
}

func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	requestID := r.URL.Query().Get(":id")

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	request, err := h.RequestService.UpdateStatus(r.Context(), requestID, userID, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(request)
}

func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	requestID := r.URL.Query().Get(":id")

	request, err := h.RequestService.CancelRequest(r.Context(), requestID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(request)
}

func (h *RequestHandler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	requestID := r.URL.Query().Get(":id")

	var payload struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	request, err := h.RequestService.RecordFeedback(r.Context(), requestID, userID, payload.Rating, payload.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(request)
}

// GetHistory lists completed requests for the calling party, newest first.
func (h *RequestHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	role, _ := r.Context().Value("role").(string)

	requests, err := h.RequestService.ListCompletedForParty(r.Context(), userID, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(requests)
}
