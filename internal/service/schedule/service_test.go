package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func TestService_List(t *testing.T) {
	appts := new(mocks.MockAppointmentRepository)
	users := new(mocks.MockUserRepository)
	loc := time.FixedZone("BRT", -3*60*60)
	svc := NewService(appts, users, loc, "http://cdn")

	providerID := uuid.New()
	avatar := "c.png"
	users.On("FindProvider", mock.Anything, providerID).Return(&model.User{Provider: true}, nil)
	appts.On("ListProviderDay", mock.Anything, providerID,
		time.Date(2024, 1, 10, 0, 0, 0, 0, loc),
		time.Date(2024, 1, 10, 23, 59, 59, 999999999, loc),
	).Return([]*model.AppointmentWithClient{
		{Appointment: model.Appointment{Date: time.Date(2024, 1, 10, 9, 0, 0, 0, loc)}, User: model.UserSummary{Name: "Ana", AvatarPath: &avatar}},
	}, nil)

	// 02:00 UTC on the 11th is still the 10th in BRT.
	list, err := svc.List(context.Background(), providerID, time.Date(2024, 1, 11, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "http://cdn/files/c.png", list[0].User.AvatarURL)
	appts.AssertExpectations(t)
}

func TestService_List_NotAProvider(t *testing.T) {
	appts := new(mocks.MockAppointmentRepository)
	users := new(mocks.MockUserRepository)
	svc := NewService(appts, users, time.UTC, "")

	id := uuid.New()
	users.On("FindProvider", mock.Anything, id).Return(nil, nil)

	_, err := svc.List(context.Background(), id, time.Now())
	assert.Equal(t, apperrors.KindNotAProvider, apperrors.KindOf(err))
	appts.AssertNotCalled(t, "ListProviderDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_List_MissingDate(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewService(new(mocks.MockAppointmentRepository), users, time.UTC, "")

	id := uuid.New()
	users.On("FindProvider", mock.Anything, id).Return(&model.User{Provider: true}, nil)

	_, err := svc.List(context.Background(), id, time.Time{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
