package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

var (
	// ErrConflict is returned when a unique index rejects a write.
	ErrConflict = errors.New("unique constraint violated")
	// ErrNotModified is returned when a guarded update matched no row.
	ErrNotModified = errors.New("no rows updated")
)

// All repository interfaces in one file. Finders return nil, nil when
// nothing matches.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		FindProvider(ctx context.Context, id uuid.UUID) (*model.User, error)
		ListProviders(ctx context.Context) ([]*model.UserSummary, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Update persists the cancellation. It only touches active rows and
		// returns ErrNotModified otherwise.
		Update(ctx context.Context, appointment *model.Appointment) error
		FindActive(ctx context.Context, providerID uuid.UUID, date time.Time) (*model.Appointment, error)
		FindActiveInRange(ctx context.Context, providerID uuid.UUID, start, end time.Time) ([]*model.Appointment, error)
		ListActiveForUser(ctx context.Context, userID uuid.UUID, page model.Pagination) ([]*model.AppointmentWithProvider, error)
		ListProviderDay(ctx context.Context, providerID uuid.UUID, start, end time.Time) ([]*model.AppointmentWithClient, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error)
		// MarkRead returns nil, nil when the notification does not belong to userID.
		MarkRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error)
	}

	FileRepository interface {
		Create(ctx context.Context, file *model.File) error
		Get(ctx context.Context, id uuid.UUID) (*model.File, error)
	}
)
