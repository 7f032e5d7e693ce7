// Package filter derives the dashboard's visible appointment list from a
// status filter and a date-range filter.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPending   StatusFilter = StatusFilter(model.StatusPending)
	StatusConfirmed StatusFilter = StatusFilter(model.StatusConfirmed)
	StatusRejected  StatusFilter = StatusFilter(model.StatusRejected)
)

type DateFilter string

const (
	DateAll      DateFilter = "all"
	DateToday    DateFilter = "today"
	DateTomorrow DateFilter = "tomorrow"
	DateWeek     DateFilter = "week"
)

// weekSpan is the inclusive length of the week filter, in days after the reference date.
const weekSpan = 7

// ParseStatusFilter maps a query value to a StatusFilter. Empty means all.
func ParseStatusFilter(v string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(v))); f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusConfirmed, StatusRejected:
		return f, nil
	}
	return "", fmt.Errorf("unknown status filter %q", v)
}

// ParseDateFilter maps a query value to a DateFilter. Empty means all.
func ParseDateFilter(v string) (DateFilter, error) {
	switch f := DateFilter(strings.ToLower(strings.TrimSpace(v))); f {
	case "":
		return DateAll, nil
	case DateAll, DateToday, DateTomorrow, DateWeek:
		return f, nil
	}
	return "", fmt.Errorf("unknown date filter %q", v)
}

// Apply returns the appointments matching both filters, in input order.
// Only the calendar date of ref is used. The input slice is not modified.
func Apply(appts []model.Appointment, status StatusFilter, date DateFilter, ref time.Time) []model.Appointment {
	match := dateMatcher(date, model.DayOf(ref))
	out := make([]model.Appointment, 0, len(appts))
	for _, a := range appts {
		if status != StatusAll && string(a.Status) != string(status) {
			continue
		}
		if !match(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func dateMatcher(f DateFilter, ref time.Time) func(model.Appointment) bool {
	if f == DateAll || f == "" {
		return func(model.Appointment) bool { return true }
	}
	var from, to time.Time
	switch f {
	case DateToday:
		from, to = ref, ref
	case DateTomorrow:
		from = ref.AddDate(0, 0, 1)
		to = from
	case DateWeek:
		from, to = ref, ref.AddDate(0, 0, weekSpan)
	default:
		return func(model.Appointment) bool { return false }
	}
	return func(a model.Appointment) bool {
		d, err := a.Day()
		if err != nil {
			return false
		}
		return !d.Before(from) && !d.After(to)
	}
}
