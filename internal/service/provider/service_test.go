package provider

import (
	"context"
	"errors"
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

func TestService_List_Caches(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewService(users, time.Minute, "http://api")
	avatar := "p.png"

	users.On("ListProviders", mock.Anything).Return([]*model.UserSummary{
		{ID: uuid.New(), Name: "Ana", AvatarPath: &avatar},
	}, nil).Once()

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "http://api/files/p.png", first[0].AvatarURL)
	users.AssertNumberOfCalls(t, "ListProviders", 1)
}

func TestService_Invalidate(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewService(users, time.Minute, "")
	users.On("ListProviders", mock.Anything).Return([]*model.UserSummary{}, nil)

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	svc.Invalidate()
	_, err = svc.List(context.Background())
	require.NoError(t, err)

	users.AssertNumberOfCalls(t, "ListProviders", 2)
}

func TestService_List_ErrorIsNotCached(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewService(users, time.Minute, "")
	users.On("ListProviders", mock.Anything).Return(nil, errors.New("down")).Once()
	users.On("ListProviders", mock.Anything).Return([]*model.UserSummary{}, nil).Once()

	_, err := svc.List(context.Background())
	assert.Equal(t, apperrors.KindInfrastructure, apperrors.KindOf(err))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
