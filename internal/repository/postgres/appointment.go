package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

const activeSlotIndex = "appointments_provider_date_active_idx"

const appointmentColumns = `id, user_id, provider_id, date, cancelled_at, created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, provider_id, date, cancelled_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.UserID,
		appointment.ProviderID,
		appointment.Date,
		appointment.CancelledAt,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, activeSlotIndex) {
			return fmt.Errorf("failed to create appointment: %w", repository.ErrConflict)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET cancelled_at = $1, updated_at = $2
		WHERE id = $3 AND cancelled_at IS NULL
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.CancelledAt,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update appointment %s: %w", appointment.ID, repository.ErrNotModified)
	}
	return nil
}

func (r *appointmentRepository) FindActive(ctx context.Context, providerID uuid.UUID, date time.Time) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1 AND date = $2 AND cancelled_at IS NULL
		LIMIT 1
	`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, providerID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveInRange(ctx context.Context, providerID uuid.UUID, start, end time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1
		  AND cancelled_at IS NULL
		  AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list appointments in range: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListActiveForUser(ctx context.Context, userID uuid.UUID, page model.Pagination) ([]*model.AppointmentWithProvider, error) {
	query := `
		SELECT a.id, a.user_id, a.provider_id, a.date, a.cancelled_at, a.created_at, a.updated_at,
		       p.id AS "provider.id", p.name AS "provider.name", p.email AS "provider.email",
		       f.path AS "provider.avatar_path"
		FROM appointments a
		JOIN users p ON p.id = a.provider_id
		LEFT JOIN files f ON f.id = p.avatar_id
		WHERE a.user_id = $1 AND a.cancelled_at IS NULL
		ORDER BY a.date
		LIMIT $2 OFFSET $3
	`

	var appointments []*model.AppointmentWithProvider
	if err := r.db.SelectContext(ctx, &appointments, query, userID, page.PageSize, page.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListProviderDay(ctx context.Context, providerID uuid.UUID, start, end time.Time) ([]*model.AppointmentWithClient, error) {
	query := `
		SELECT a.id, a.user_id, a.provider_id, a.date, a.cancelled_at, a.created_at, a.updated_at,
		       u.id AS "client.id", u.name AS "client.name", u.email AS "client.email",
		       f.path AS "client.avatar_path"
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		LEFT JOIN files f ON f.id = u.avatar_id
		WHERE a.provider_id = $1
		  AND a.cancelled_at IS NULL
		  AND a.date BETWEEN $2 AND $3
		ORDER BY a.date
	`

	var appointments []*model.AppointmentWithClient
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return appointments, nil
}
