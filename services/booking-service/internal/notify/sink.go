package notify

import (
	"context"
	"log/slog"

	"github.com/md-rashed-zaman/salonbook/libs/metrics"
)

// LogSink writes events to the service log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Notify(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "appointment notification",
		"event_id", ev.ID,
		"event_type", ev.Type,
		"appointment_id", ev.AppointmentID,
		"provider_id", ev.ProviderID,
		"title", ev.Message.Title,
	)
	return nil
}

type meteredSink struct {
	Sink
	metrics *metrics.BookingMetrics
}

// WithMetrics counts every Notify call on s by outcome.
func WithMetrics(s Sink, m *metrics.BookingMetrics) Sink {
	if m == nil {
		return s
	}
	return &meteredSink{Sink: s, metrics: m}
}

func (s *meteredSink) Notify(ctx context.Context, ev Event) error {
	err := s.Sink.Notify(ctx, ev)
	s.metrics.ObserveNotification(s.Sink.Name(), ev.Type, err)
	return err
}
