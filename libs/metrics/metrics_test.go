package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveSubmission("accepted")
	m.ObserveSubmission("accepted")
	m.ObserveTransition("confirm", "invalid_transition")
	m.ObserveNotification("log", "booking.appointment.confirmed.v1", nil)
	m.ObserveNotification("kafka", "booking.appointment.confirmed.v1", errors.New("down"))
	m.SetAppointmentCounts(map[string]int{"pending": 2, "confirmed": 1})

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("accepted")); got != 2 {
		t.Fatalf("expected 2 submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.notificationsTotal.WithLabelValues("kafka", "booking.appointment.confirmed.v1", "error")); got != 1 {
		t.Fatalf("expected 1 failed notification, got %v", got)
	}
	if got := testutil.ToFloat64(m.appointments.WithLabelValues("pending")); got != 2 {
		t.Fatalf("expected pending gauge 2, got %v", got)
	}

	rw := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rw.Body.String(), "salonbook_booking_transitions_total") {
		t.Fatal("expected transitions metric in exposition")
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveSubmission("accepted")
	m.ObserveTransition("reject", "ok")
	m.ObserveNotification("log", "x", nil)
	m.SetAppointmentCounts(map[string]int{"pending": 1})
}
