// Package lifecycle applies provider decisions (confirm, reject) to pending
// appointments.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/metrics"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type StatusUpdater interface {
	UpdateStatus(id string, next model.Status) (model.Appointment, error)
}

type Handler struct {
	store   StatusUpdater
	sink    notify.Sink
	metrics *metrics.BookingMetrics
	logger  *slog.Logger
	clock   func() time.Time
}

func NewHandler(st StatusUpdater, sink notify.Sink, m *metrics.BookingMetrics, logger *slog.Logger, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{store: st, sink: sink, metrics: m, logger: logger, clock: clock}
}

// Confirm moves a pending appointment to confirmed. Confirming twice fails
// with store.ErrInvalidTransition.
func (h *Handler) Confirm(ctx context.Context, id string) (model.Appointment, error) {
	return h.transition(ctx, "confirm", id, model.StatusConfirmed)
}

// Reject moves a pending appointment to rejected.
func (h *Handler) Reject(ctx context.Context, id string) (model.Appointment, error) {
	return h.transition(ctx, "reject", id, model.StatusRejected)
}

func (h *Handler) transition(ctx context.Context, action, id string, next model.Status) (model.Appointment, error) {
	ctx, span := otelx.Tracer("booking-service").Start(ctx, "lifecycle."+action)
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	appt, err := h.store.UpdateStatus(id, next)
	if err != nil {
		h.metrics.ObserveTransition(action, outcome(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.Appointment{}, err
	}
	h.metrics.ObserveTransition(action, "ok")
	h.logger.InfoContext(ctx, "appointment "+string(next), "appointment_id", id, "provider_id", appt.ProviderID)

	// The transition stands even if the sink fails.
	if eventType, ok := notify.TransitionEvent(next); ok && h.sink != nil {
		if err := h.sink.Notify(ctx, notify.NewEvent(eventType, appt, h.clock())); err != nil {
			h.logger.ErrorContext(ctx, "transition notification failed", "err", err, "appointment_id", id, "event_type", eventType)
		}
	}
	return appt, nil
}

func outcome(err error) string {
	switch {
	case store.IsNotFound(err):
		return "not_found"
	case store.IsConflict(err):
		return "invalid_transition"
	default:
		return "error"
	}
}
