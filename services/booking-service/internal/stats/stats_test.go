package stats

import (
	"testing"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, time.Now()); got != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestCompute(t *testing.T) {
	ref := time.Date(2024, 7, 17, 9, 0, 0, 0, time.UTC)
	appts := []model.Appointment{
		{ID: "1", Date: "2024-07-17", Status: model.StatusPending},
		{ID: "2", Date: "2024-07-17", Status: model.StatusConfirmed},
		{ID: "3", Date: "2024-07-18", Status: model.StatusConfirmed},
		{ID: "4", Date: "2024-07-16", Status: model.StatusRejected},
	}
	want := Stats{Total: 4, Pending: 1, Confirmed: 2, Rejected: 1, TodayConfirmed: 1}
	if got := Compute(appts, ref); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	by := want.ByStatus()
	if by["pending"] != 1 || by["confirmed"] != 2 || by["rejected"] != 1 {
		t.Fatalf("unexpected by-status map %v", by)
	}
}
