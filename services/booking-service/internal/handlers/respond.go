package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/idempotency"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/store"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message *notify.Message   `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation failed",
			Message: &notify.Message{Title: booking.ValidationTitle, Description: booking.ValidationDescription},
			Fields:  verr.Fields,
		})
	case store.IsNotFound(err):
		writeErrorMessage(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, store.ErrInvalidTransition):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		writeErrorMessage(w, http.StatusConflict, "appointment already exists")
	case errors.Is(err, idempotency.ErrInFlight):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, idempotency.ErrKeyReused):
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
