package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/salonbook/libs/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/stats"
)

type AppointmentReader interface {
	List() []model.Appointment
	Get(id string) (model.Appointment, error)
}

type Transitioner interface {
	Confirm(ctx context.Context, id string) (model.Appointment, error)
	Reject(ctx context.Context, id string) (model.Appointment, error)
}

// AppointmentHandler serves the provider dashboard.
type AppointmentHandler struct {
	store     AppointmentReader
	lifecycle Transitioner
	metrics   *metrics.BookingMetrics
	logger    *slog.Logger
	clock     func() time.Time
}

func NewAppointmentHandler(st AppointmentReader, lc Transitioner, m *metrics.BookingMetrics, logger *slog.Logger, clock func() time.Time) *AppointmentHandler {
	if clock == nil {
		clock = time.Now
	}
	return &AppointmentHandler{store: st, lifecycle: lc, metrics: m, logger: logger, clock: clock}
}

// appointmentView adds the dashboard's display fields to an appointment.
type appointmentView struct {
	model.Appointment
	Display          model.StatusDisplay `json:"display"`
	DisplayDate      string              `json:"displayDate"`
	CreatedAtDisplay string              `json:"createdAtDisplay"`
}

func viewOf(a model.Appointment) appointmentView {
	return appointmentView{
		Appointment:      a,
		Display:          model.DisplayFor(a.Status),
		DisplayDate:      model.FormatDisplayDate(a.Date),
		CreatedAtDisplay: model.FormatDisplayTimestamp(a.CreatedAt),
	}
}

type listResponse struct {
	Appointments []appointmentView `json:"appointments"`
	Count        int               `json:"count"`
	Status       string            `json:"status"`
	Date         string            `json:"date"`
	Ref          string            `json:"ref"`
}

type statsResponse struct {
	stats.Stats
	Ref string `json:"ref"`
}

type transitionResponse struct {
	Appointment appointmentView `json:"appointment"`
	Message     notify.Message  `json:"message"`
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := filter.ParseStatusFilter(q.Get("status"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := filter.ParseDateFilter(q.Get("date"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}

	visible := filter.Apply(h.store.List(), status, date, ref)
	views := make([]appointmentView, 0, len(visible))
	for _, a := range visible {
		views = append(views, viewOf(a))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Appointments: views,
		Count:        len(views),
		Status:       string(status),
		Date:         string(date),
		Ref:          model.FormatDate(ref),
	})
}

func (h *AppointmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}
	s := stats.Compute(h.store.List(), ref)
	h.metrics.SetAppointmentCounts(s.ByStatus())
	writeJSON(w, http.StatusOK, statsResponse{Stats: s, Ref: model.FormatDate(ref)})
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(appt))
}

func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycle.Confirm, notify.EventConfirmed)
}

func (h *AppointmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycle.Reject, notify.EventRejected)
}

func (h *AppointmentHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (model.Appointment, error), eventType string) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	appt, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.SetAppointmentCounts(stats.Compute(h.store.List(), h.clock()).ByStatus())
	writeJSON(w, http.StatusOK, transitionResponse{Appointment: viewOf(appt), Message: notify.MessageFor(eventType)})
}

func (h *AppointmentHandler) Statuses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.DisplayTable())
}

// referenceDate reads ?ref=YYYY-MM-DD, defaulting to today (UTC).
func (h *AppointmentHandler) referenceDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("ref"))
	if raw == "" {
		return model.DayOf(h.clock().UTC()), true
	}
	ref, err := model.ParseDate(raw)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid ref, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return ref, true
}
