package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BookingMetrics exposes counters for the appointment lifecycle.
type BookingMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	transitionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	appointments       *prometheus.GaugeVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"result"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Confirm/reject attempts by outcome",
		}, []string{"action", "result"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "notify",
			Name:      "events_total",
			Help:      "Notification events handed to the sink",
		}, []string{"sink", "event_type", "result"}),
		appointments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "salonbook",
			Subsystem: "booking",
			Name:      "appointments",
			Help:      "Appointments currently held, by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.transitionsTotal, m.notificationsTotal, m.appointments)
	return m
}

func (m *BookingMetrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveTransition(action, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(action, result).Inc()
}

func (m *BookingMetrics) ObserveNotification(sink, eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notificationsTotal.WithLabelValues(sink, eventType, result).Inc()
}

// SetAppointmentCounts replaces the per-status gauge values.
func (m *BookingMetrics) SetAppointmentCounts(counts map[string]int) {
	if m == nil {
		return
	}
	for status, n := range counts {
		m.appointments.WithLabelValues(status).Set(float64(n))
	}
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
