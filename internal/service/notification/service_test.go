package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func TestService_NotifyCreated(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	svc := NewService(repo, new(mocks.MockUserRepository))
	providerID := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == providerID && n.Content == "hello" && !n.Read && n.ID != uuid.Nil
	})).Return(nil)

	require.NoError(t, svc.NotifyCreated(context.Background(), providerID, "hello"))
	repo.AssertExpectations(t)
}

func TestService_NotifyCreated_StoreError(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	svc := NewService(repo, new(mocks.MockUserRepository))
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := svc.NotifyCreated(context.Background(), uuid.New(), "hello")

	assert.Equal(t, apperrors.KindInfrastructure, apperrors.KindOf(err))
}

func TestService_List(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	users := new(mocks.MockUserRepository)
	svc := NewService(repo, users)
	providerID := uuid.New()

	users.On("FindProvider", mock.Anything, providerID).Return(&model.User{Provider: true}, nil)
	repo.On("ListForUser", mock.Anything, providerID, ListLimit).Return(nil, nil)

	notifications, err := svc.List(context.Background(), providerID)

	require.NoError(t, err)
	assert.NotNil(t, notifications)
	assert.Empty(t, notifications)
}

func TestService_List_NotAProvider(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	users := new(mocks.MockUserRepository)
	svc := NewService(repo, users)
	userID := uuid.New()
	users.On("FindProvider", mock.Anything, userID).Return(nil, nil)

	_, err := svc.List(context.Background(), userID)

	assert.Equal(t, apperrors.KindNotAProvider, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "ListForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_MarkRead(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	svc := NewService(repo, new(mocks.MockUserRepository))
	userID, id := uuid.New(), uuid.New()

	repo.On("MarkRead", mock.Anything, id, userID).Return(&model.Notification{Base: model.Base{ID: id}, Read: true}, nil)
	n, err := svc.MarkRead(context.Background(), userID, id)
	require.NoError(t, err)
	assert.True(t, n.Read)

	other := uuid.New()
	repo.On("MarkRead", mock.Anything, other, userID).Return(nil, nil)
	_, err = svc.MarkRead(context.Background(), userID, other)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
