// Package availability answers which of a provider's slots are free on a day.
package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/calendar"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/clock"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type Service struct {
	appointments repository.AppointmentRepository
	calendar     *calendar.Calendar
	clock        clock.Clock
}

func NewService(appointments repository.AppointmentRepository, cal *calendar.Calendar, clk clock.Clock) *Service {
	return &Service{appointments: appointments, calendar: cal, clock: clk}
}

// ListAvailability returns every template slot of day, in template order. A
// slot is available when it starts strictly after now and no active
// appointment holds it.
func (s *Service) ListAvailability(ctx context.Context, providerID uuid.UUID, day time.Time) ([]model.Slot, error) {
	if day.IsZero() {
		return nil, apperrors.Validation("invalid date")
	}

	day = day.In(s.calendar.Location())
	appointments, err := s.appointments.FindActiveInRange(ctx, providerID, clock.StartOfDay(day), clock.EndOfDay(day))
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load appointments", err)
	}

	now := s.clock.Now()
	slots := s.calendar.SlotsFor(day)
	for i := range slots {
		slots[i].Available = slots[i].Value.After(now) && !booked(appointments, slots[i].Value)
	}
	return slots, nil
}

func booked(appointments []*model.Appointment, at time.Time) bool {
	for _, a := range appointments {
		if a.Date.Equal(at) {
			return true
		}
	}
	return false
}
