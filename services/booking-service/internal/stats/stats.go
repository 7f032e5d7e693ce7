package stats

import (
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type Stats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Confirmed      int `json:"confirmed"`
	Rejected       int `json:"rejected"`
	TodayConfirmed int `json:"todayConfirmed"`
}

// Compute counts appointments per status. TodayConfirmed counts confirmed
// appointments dated on ref's calendar day.
func Compute(appts []model.Appointment, ref time.Time) Stats {
	today := model.FormatDate(model.DayOf(ref))
	var s Stats
	for _, a := range appts {
		s.Total++
		switch a.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusConfirmed:
			s.Confirmed++
			if a.Date == today {
				s.TodayConfirmed++
			}
		case model.StatusRejected:
			s.Rejected++
		}
	}
	return s
}

// ByStatus returns the per-status counts keyed by status name.
func (s Stats) ByStatus() map[string]int {
	return map[string]int{
		string(model.StatusPending):   s.Pending,
		string(model.StatusConfirmed): s.Confirmed,
		string(model.StatusRejected):  s.Rejected,
	}
}
