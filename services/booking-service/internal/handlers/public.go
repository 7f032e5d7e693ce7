package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type Submitter interface {
	Submit(ctx context.Context, key string, s booking.Submission) (booking.Result, error)
}

// PublicHandler serves the client-facing booking form endpoints.
type PublicHandler struct {
	catalog *catalog.Catalog
	intake  Submitter
	logger  *slog.Logger
}

func NewPublicHandler(c *catalog.Catalog, intake Submitter, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{catalog: c, intake: intake, logger: logger}
}

type bookResponse struct {
	Appointment appointmentView `json:"appointment"`
	Message     notify.Message  `json:"message"`
}

func (h *PublicHandler) Services(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Services())
}

func (h *PublicHandler) Slots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.TimeSlots())
}

func (h *PublicHandler) Book(w http.ResponseWriter, r *http.Request) {
	var sub booking.Submission
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	res, err := h.intake.Submit(r.Context(), key, sub)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		w.Header().Set("Idempotent-Replay", "true")
		status = http.StatusOK
	}
	writeJSON(w, status, bookResponse{
		Appointment: viewOf(res.Appointment),
		Message:     notify.MessageFor(notify.EventRequested),
	})
}
