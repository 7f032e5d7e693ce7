// Package notify hands appointment outcomes to a notification sink. Delivery
// to the client (email, SMS) happens downstream of the sink.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const (
	EventRequested = "booking.appointment.requested.v1"
	EventConfirmed = "booking.appointment.confirmed.v1"
	EventRejected  = "booking.appointment.rejected.v1"
)

// Message is the user-facing text attached to an event.
type Message struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var messages = map[string]Message{
	EventRequested: {
		Title:       "Afspraak aangevraagd!",
		Description: "Uw afspraakaanvraag is ingediend. U hoort binnen 24 uur van ons.",
	},
	EventConfirmed: {
		Title:       "Afspraak bevestigd",
		Description: "De klant ontvangt automatisch een bevestiging.",
	},
	EventRejected: {
		Title:       "Afspraak geweigerd",
		Description: "De klant wordt hiervan op de hoogte gesteld.",
	},
}

// MessageFor returns the message shown for an event type.
func MessageFor(eventType string) Message {
	return messages[eventType]
}

type Event struct {
	ID            string            `json:"eventId"`
	Type          string            `json:"type"`
	AppointmentID string            `json:"appointmentId"`
	ProviderID    string            `json:"providerId"`
	OccurredAt    time.Time         `json:"occurredAt"`
	Message       Message           `json:"message"`
	Appointment   model.Appointment `json:"appointment"`
}

func NewEvent(eventType string, appt model.Appointment, now time.Time) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		OccurredAt:    now.UTC(),
		Message:       MessageFor(eventType),
		Appointment:   appt,
	}
}

// TransitionEvent maps a target status to its event type.
func TransitionEvent(status model.Status) (string, bool) {
	switch status {
	case model.StatusConfirmed:
		return EventConfirmed, true
	case model.StatusRejected:
		return EventRejected, true
	}
	return "", false
}

func (e Event) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ErrClosed is returned by Notify once a sink has started shutting down.
var ErrClosed = errors.New("notification sink closed")

// Sink accepts events for delivery. Notify must not block on the network
// for longer than ctx allows.
type Sink interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}
