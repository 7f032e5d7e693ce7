package booking

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

var ErrValidation = errors.New("booking validation failed")

// Messages shown to the client when a submission is rejected.
const (
	ValidationTitle       = "Vereiste velden ontbreken"
	ValidationDescription = "Vul alstublieft alle verplichte velden in."
)

// Submission is the booking form as sent by the client.
type Submission struct {
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	ClientEmail string `json:"clientEmail,omitempty"`
	ServiceID   string `json:"serviceId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Notes       string `json:"notes,omitempty"`
}

// ValidationError lists the offending fields by their JSON names.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = f + ": " + e.Fields[f]
	}
	return fmt.Sprintf("%s (%s)", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Normalize trims every field.
func (s Submission) Normalize() Submission {
	return Submission{
		ClientName:  strings.TrimSpace(s.ClientName),
		ClientPhone: strings.TrimSpace(s.ClientPhone),
		ClientEmail: strings.TrimSpace(s.ClientEmail),
		ServiceID:   strings.TrimSpace(s.ServiceID),
		Date:        strings.TrimSpace(s.Date),
		Time:        strings.TrimSpace(s.Time),
		Notes:       strings.TrimSpace(s.Notes),
	}
}

// Fingerprint identifies the normalized content of s. Submissions that differ
// only in surrounding whitespace share a fingerprint.
func (s Submission) Fingerprint() string {
	n := s.Normalize()
	h := sha256.New()
	for _, v := range []string{n.ClientName, n.ClientPhone, n.ClientEmail, n.ServiceID, n.Date, n.Time, n.Notes} {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks s against the catalog. Dates before ref's calendar day are
// refused. Slot availability and existing bookings are not checked.
func (s Submission) Validate(c *catalog.Catalog, ref time.Time) error {
	s = s.Normalize()
	fields := map[string]string{}

	required := []struct{ name, value string }{
		{"clientName", s.ClientName},
		{"clientPhone", s.ClientPhone},
		{"serviceId", s.ServiceID},
		{"date", s.Date},
		{"time", s.Time},
	}
	for _, r := range required {
		if r.value == "" {
			fields[r.name] = "required"
		}
	}

	if s.ServiceID != "" {
		if _, ok := c.Service(s.ServiceID); !ok {
			fields["serviceId"] = "unknown service"
		}
	}
	if s.Date != "" {
		d, err := model.ParseDate(s.Date)
		switch {
		case err != nil:
			fields["date"] = "must be YYYY-MM-DD"
		case d.Before(model.DayOf(ref)):
			fields["date"] = "must not be in the past"
		}
	}
	if s.Time != "" {
		if _, err := time.Parse(model.ClockLayout, s.Time); err != nil {
			fields["time"] = "must be HH:MM"
		} else if _, ok := c.Slot(s.Time); !ok {
			fields["time"] = "not a bookable time slot"
		}
	}
	if s.ClientEmail != "" && !validEmail(s.ClientEmail) {
		fields["clientEmail"] = "invalid email address"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	return err == nil && addr.Address == v
}
