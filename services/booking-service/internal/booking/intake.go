package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/md-rashed-zaman/salonbook/libs/metrics"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/idempotency"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AppointmentStore is the part of the store intake writes to.
type AppointmentStore interface {
	Add(appt model.Appointment) error
	Get(id string) (model.Appointment, error)
}

type Intake struct {
	builder *Builder
	store   AppointmentStore
	sink    notify.Sink
	keeper  idempotency.Keeper
	metrics *metrics.BookingMetrics
	logger  *slog.Logger
}

// NewIntake wires submission handling. keeper and m may be nil.
func NewIntake(builder *Builder, store AppointmentStore, sink notify.Sink, keeper idempotency.Keeper, m *metrics.BookingMetrics, logger *slog.Logger) *Intake {
	return &Intake{builder: builder, store: store, sink: sink, keeper: keeper, metrics: m, logger: logger}
}

// Result is the outcome of a submission. Replayed is set when the
// idempotency key matched an earlier completed submission.
type Result struct {
	Appointment model.Appointment
	Replayed    bool
}

// Submit validates and stores s, then notifies the sink. A non-empty key
// makes repeated submissions of the same content return the first
// appointment. Reusing the key for different content fails with
// idempotency.ErrKeyReused.
func (in *Intake) Submit(ctx context.Context, key string, s Submission) (Result, error) {
	ctx, span := otelx.Tracer("booking-service").Start(ctx, "booking.Submit")
	defer span.End()

	reserved := false
	fingerprint := s.Fingerprint()
	if key != "" && in.keeper != nil {
		existingID, ok, err := in.keeper.Reserve(ctx, key, fingerprint)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			in.metrics.ObserveSubmission("in_flight")
			return Result{}, err
		case errors.Is(err, idempotency.ErrKeyReused):
			in.metrics.ObserveSubmission("key_reused")
			in.logger.WarnContext(ctx, "idempotency key reused with different content")
			return Result{}, err
		case err != nil:
			in.logger.WarnContext(ctx, "idempotency keeper unavailable, proceeding", "err", err)
		case !ok:
			appt, err := in.store.Get(existingID)
			if err == nil {
				in.metrics.ObserveSubmission("replayed")
				span.SetAttributes(attribute.Bool("booking.replayed", true))
				return Result{Appointment: appt, Replayed: true}, nil
			}
			in.logger.WarnContext(ctx, "idempotent appointment missing, booking again", "appointment_id", existingID)
			reserved = true
		default:
			reserved = true
		}
	}

	appt, err := in.create(ctx, s)
	if err != nil {
		if reserved {
			if rerr := in.keeper.Release(ctx, key); rerr != nil {
				in.logger.WarnContext(ctx, "idempotency release failed", "err", rerr)
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	if reserved {
		if err := in.keeper.Complete(ctx, key, fingerprint, appt.ID); err != nil {
			in.logger.WarnContext(ctx, "idempotency complete failed", "err", err, "appointment_id", appt.ID)
		}
	}
	span.SetAttributes(attribute.String("appointment.id", appt.ID))
	return Result{Appointment: appt}, nil
}

func (in *Intake) create(ctx context.Context, s Submission) (model.Appointment, error) {
	appt, err := in.builder.Build(s)
	if err != nil {
		in.metrics.ObserveSubmission("invalid")
		return model.Appointment{}, err
	}
	if err := in.store.Add(appt); err != nil {
		in.metrics.ObserveSubmission("error")
		return model.Appointment{}, fmt.Errorf("store appointment: %w", err)
	}
	in.metrics.ObserveSubmission("accepted")
	in.logger.InfoContext(ctx, "appointment requested",
		"appointment_id", appt.ID,
		"service_id", appt.Service.ID,
		"date", appt.Date,
		"time", appt.Time,
	)

	if in.sink != nil {
		if err := in.sink.Notify(ctx, notify.NewEvent(notify.EventRequested, appt, appt.CreatedAt)); err != nil {
			in.logger.ErrorContext(ctx, "request notification failed", "err", err, "appointment_id", appt.ID)
		}
	}
	return appt, nil
}
