package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/stats"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, 7, 17, 0, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Notify(_ context.Context, ev notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func setup(t *testing.T, sink notify.Sink, m *metrics.BookingMetrics) (*Handler, *store.Store) {
	t.Helper()
	st, err := store.New(
		model.Appointment{ID: "1", Date: "2024-07-17", Status: model.StatusPending, ProviderID: "provider1"},
		model.Appointment{ID: "2", Date: "2024-07-18", Status: model.StatusConfirmed, ProviderID: "provider1"},
	)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(st, sink, m, logger, func() time.Time { return ref }), st
}

func TestConfirmUpdatesStatsAndNotifies(t *testing.T) {
	sink := &recordingSink{}
	h, st := setup(t, sink, nil)

	before := stats.Compute(st.List(), ref)
	require.Equal(t, 1, before.Pending)
	require.Equal(t, 1, before.Confirmed)

	appt, err := h.Confirm(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, appt.Status)

	after := stats.Compute(st.List(), ref)
	assert.Equal(t, 0, after.Pending)
	assert.Equal(t, 2, after.Confirmed)
	assert.Equal(t, 1, after.TodayConfirmed)

	require.Len(t, sink.events, 1)
	assert.Equal(t, notify.EventConfirmed, sink.events[0].Type)
	assert.Equal(t, "1", sink.events[0].AppointmentID)
}

func TestConfirmIsNotReappliable(t *testing.T) {
	sink := &recordingSink{}
	h, _ := setup(t, sink, nil)

	_, err := h.Confirm(context.Background(), "1")
	require.NoError(t, err)
	_, err = h.Confirm(context.Background(), "1")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
	_, err = h.Reject(context.Background(), "1")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
	assert.Len(t, sink.events, 1)
}

func TestRejectUnknownLeavesStoreUnchanged(t *testing.T) {
	sink := &recordingSink{}
	h, st := setup(t, sink, nil)
	before := st.List()

	_, err := h.Reject(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, before, st.List())
	assert.Empty(t, sink.events)
}

func TestSinkFailureDoesNotRollBack(t *testing.T) {
	sink := &recordingSink{err: errors.New("sink down")}
	h, st := setup(t, sink, nil)

	appt, err := h.Reject(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, appt.Status)

	got, err := st.Get("1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.Status)
}

func TestTransitionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	h, _ := setup(t, nil, m)

	_, _ = h.Confirm(context.Background(), "1")
	_, _ = h.Confirm(context.Background(), "1")
	_, _ = h.Reject(context.Background(), "nope")

	n, err := testutil.GatherAndCount(reg, "salonbook_booking_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
