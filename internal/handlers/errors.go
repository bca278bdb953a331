package handlers

import (
	"errors"
	"net/http"

	"dispatchBack/internal/models"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrAuthentication), errors.Is(err, models.ErrSessionExpired):
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrNoRecord):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidTransition):
		http.Error(w, "Invalid status transition", http.StatusConflict)
	case errors.Is(err, models.ErrFeedbackRecorded):
		http.Error(w, "Feedback already recorded", http.StatusConflict)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
