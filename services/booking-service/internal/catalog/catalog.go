// Package catalog holds the salon's static reference data: the treatments on
// offer and the fixed daily time-slot schedule.
package catalog

import (
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type Catalog struct {
	services []model.Service
	slots    []model.TimeSlot
}

func New(services []model.Service, slots []model.TimeSlot) *Catalog {
	return &Catalog{
		services: append([]model.Service(nil), services...),
		slots:    append([]model.TimeSlot(nil), slots...),
	}
}

// Default returns the salon catalog.
func Default() *Catalog {
	return New(
		[]model.Service{
			{ID: "1", Name: "Knip + Was + Föhn", DurationMinutes: 60, Price: model.Price(35)},
			{ID: "2", Name: "Kinderknip", DurationMinutes: 30, Price: model.Price(20)},
			{ID: "3", Name: "Baard trimmen", DurationMinutes: 30, Price: model.Price(15)},
			{ID: "4", Name: "Kleuren + Knip", DurationMinutes: 120, Price: model.Price(65)},
			{ID: "5", Name: "Wassen + Föhn", DurationMinutes: 45, Price: model.Price(25)},
		},
		[]model.TimeSlot{
			{Time: "09:00", Available: true},
			{Time: "09:30", Available: true},
			{Time: "10:00", Available: false},
			{Time: "10:30", Available: true},
			{Time: "11:00", Available: true},
			{Time: "11:30", Available: false},
			{Time: "13:00", Available: true},
			{Time: "13:30", Available: true},
			{Time: "14:00", Available: true},
			{Time: "14:30", Available: false},
			{Time: "15:00", Available: true},
			{Time: "15:30", Available: true},
			{Time: "16:00", Available: true},
			{Time: "16:30", Available: true},
		},
	)
}

func (c *Catalog) Services() []model.Service {
	out := make([]model.Service, len(c.services))
	for i, s := range c.services {
		out[i] = snapshot(s)
	}
	return out
}

// Service returns a snapshot of the service with the given id.
func (c *Catalog) Service(id string) (model.Service, bool) {
	for _, s := range c.services {
		if s.ID == id {
			return snapshot(s), true
		}
	}
	return model.Service{}, false
}

func (c *Catalog) TimeSlots() []model.TimeSlot {
	return append([]model.TimeSlot(nil), c.slots...)
}

// Slot looks up the schedule entry for clock ("HH:MM").
func (c *Catalog) Slot(clock string) (model.TimeSlot, bool) {
	for _, s := range c.slots {
		if s.Time == clock {
			return s, true
		}
	}
	return model.TimeSlot{}, false
}

// snapshot copies s so callers never share the price pointer with the catalog.
func snapshot(s model.Service) model.Service {
	if s.Price != nil {
		s.Price = model.Price(*s.Price)
	}
	return s
}

// DemoAppointments returns the sample requests shown on a fresh dashboard.
func (c *Catalog) DemoAppointments(providerID string) []model.Appointment {
	svc := func(id string) model.Service {
		s, _ := c.Service(id)
		return s
	}
	ts := func(v string) time.Time {
		t, _ := time.Parse(time.RFC3339, v)
		return t
	}
	return []model.Appointment{
		{
			ID:          "1",
			ClientName:  "Emma van der Berg",
			ClientPhone: "06 12345678",
			ClientEmail: "emma@voorbeeld.nl",
			Service:     svc("1"),
			Date:        "2024-07-17",
			Time:        "10:00",
			Status:      model.StatusPending,
			ProviderID:  providerID,
			CreatedAt:   ts("2024-07-16T14:30:00Z"),
			Notes:       "Graag een korte bob, net boven de schouders",
		},
		{
			ID:          "2",
			ClientName:  "Piet Janssen",
			ClientPhone: "06 87654321",
			ClientEmail: "piet.janssen@mail.nl",
			Service:     svc("3"),
			Date:        "2024-07-17",
			Time:        "14:30",
			Status:      model.StatusConfirmed,
			ProviderID:  providerID,
			CreatedAt:   ts("2024-07-15T09:15:00Z"),
		},
		{
			ID:          "3",
			ClientName:  "Lisa de Wit",
			ClientPhone: "06 55667788",
			Service:     svc("2"),
			Date:        "2024-07-18",
			Time:        "15:00",
			Status:      model.StatusPending,
			ProviderID:  providerID,
			CreatedAt:   ts("2024-07-16T11:20:00Z"),
			Notes:       "Voor zoon van 8 jaar, hij is wat verlegen",
		},
		{
			ID:          "4",
			ClientName:  "Mark Stukken",
			ClientPhone: "06 99887766",
			ClientEmail: "mark@voorbeeld.com",
			Service:     svc("4"),
			Date:        "2024-07-16",
			Time:        "11:00",
			Status:      model.StatusRejected,
			ProviderID:  providerID,
			CreatedAt:   ts("2024-07-15T16:45:00Z"),
		},
	}
}
