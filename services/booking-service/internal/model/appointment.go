package model

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the ISO calendar date used for Appointment.Date.
	DateLayout = "2006-01-02"
	// ClockLayout is the HH:MM time of day used for slots.
	ClockLayout = "15:04"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next. Only pending
// appointments move, and only to confirmed or rejected.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusConfirmed || next == StatusRejected)
}

// Service is a bookable treatment. Appointments embed a copy taken at booking time.
type Service struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration"`
	Price           *float64 `json:"price,omitempty"`
}

type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type Appointment struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"clientName"`
	ClientPhone string    `json:"clientPhone"`
	ClientEmail string    `json:"clientEmail,omitempty"`
	Service     Service   `json:"service"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      Status    `json:"status"`
	ProviderID  string    `json:"providerId"`
	CreatedAt   time.Time `json:"createdAt"`
	Notes       string    `json:"notes,omitempty"`
}

// Day parses the appointment date as a UTC midnight.
func (a Appointment) Day() (time.Time, error) {
	return ParseDate(a.Date)
}

type Provider struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	BusinessName string    `json:"businessName,omitempty"`
	Services     []Service `json:"services"`
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// DayOf truncates t to its calendar date, expressed as UTC midnight.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func Price(v float64) *float64 {
	return &v
}
