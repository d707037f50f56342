// Package schedule lists a provider's booked appointments for one day.
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/clock"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type Service struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	location     *time.Location
	filesBaseURL string
}

func NewService(appointments repository.AppointmentRepository, users repository.UserRepository, loc *time.Location, filesBaseURL string) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{appointments: appointments, users: users, location: loc, filesBaseURL: filesBaseURL}
}

// List returns the active appointments of providerID on day, ordered by
// date. Only providers have a schedule.
func (s *Service) List(ctx context.Context, providerID uuid.UUID, day time.Time) ([]*model.AppointmentWithClient, error) {
	provider, err := s.users.FindProvider(ctx, providerID)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load user", err)
	}
	if provider == nil {
		return nil, apperrors.NotAProvider("user is not a provider")
	}

	if day.IsZero() {
		return nil, apperrors.Validation("invalid date")
	}

	day = day.In(s.location)
	appts, err := s.appointments.ListProviderDay(ctx, providerID, clock.StartOfDay(day), clock.EndOfDay(day))
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load schedule", err)
	}

	for _, a := range appts {
		if a.User.AvatarPath != nil {
			a.User.AvatarURL = model.FileURL(s.filesBaseURL, *a.User.AvatarPath)
		}
	}
	if appts == nil {
		appts = []*model.AppointmentWithClient{}
	}
	return appts, nil
}
