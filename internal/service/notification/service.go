package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

// ListLimit is how many of the latest notifications a provider sees.
const ListLimit = 20

// Dispatcher receives "appointment created" messages for a provider.
type Dispatcher interface {
	NotifyCreated(ctx context.Context, providerID uuid.UUID, message string) error
}

type Service struct {
	repo  repository.NotificationRepository
	users repository.UserRepository
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository) *Service {
	return &Service{repo: repo, users: users}
}

// NotifyCreated stores an unread in-app notification for the provider.
func (s *Service) NotifyCreated(ctx context.Context, providerID uuid.UUID, message string) error {
	n := &model.Notification{
		Base:    model.Base{ID: uuid.New()},
		UserID:  providerID,
		Content: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return apperrors.Infrastructure("failed to store notification", err)
	}
	return nil
}

// List returns the provider's latest notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	if err := s.requireProvider(ctx, userID); err != nil {
		return nil, err
	}

	notifications, err := s.repo.ListForUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to list notifications", err)
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}
	return notifications, nil
}

// MarkRead flags one of the user's own notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to update notification", err)
	}
	if n == nil {
		return nil, apperrors.NotFound("notification")
	}
	return n, nil
}

func (s *Service) requireProvider(ctx context.Context, userID uuid.UUID) error {
	provider, err := s.users.FindProvider(ctx, userID)
	if err != nil {
		return apperrors.Infrastructure("failed to load user", err)
	}
	if provider == nil {
		return apperrors.NotAProvider("only providers can load notifications")
	}
	return nil
}

var _ Dispatcher = (*Service)(nil)
