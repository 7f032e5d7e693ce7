// Package booking turns public booking submissions into pending appointments.
package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type Builder struct {
	catalog    *catalog.Catalog
	providerID string
	clock      func() time.Time
	newID      func() string
}

func NewBuilder(c *catalog.Catalog, providerID string, clock func() time.Time) *Builder {
	if clock == nil {
		clock = time.Now
	}
	return &Builder{catalog: c, providerID: providerID, clock: clock, newID: uuid.NewString}
}

// Build validates s against today's date and returns a new pending appointment
// with a snapshot of the chosen service.
func (b *Builder) Build(s Submission) (model.Appointment, error) {
	now := b.clock().UTC()
	if err := s.Validate(b.catalog, now); err != nil {
		return model.Appointment{}, err
	}
	s = s.Normalize()
	svc, _ := b.catalog.Service(s.ServiceID)
	return model.Appointment{
		ID:          b.newID(),
		ClientName:  s.ClientName,
		ClientPhone: s.ClientPhone,
		ClientEmail: s.ClientEmail,
		Service:     svc,
		Date:        s.Date,
		Time:        s.Time,
		Status:      model.StatusPending,
		ProviderID:  b.providerID,
		CreatedAt:   now,
		Notes:       s.Notes,
	}, nil
}
