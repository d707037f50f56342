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

type fileRepository struct {
	BaseRepository
}

func NewFileRepository(db *sqlx.DB) repository.FileRepository {
	return &fileRepository{NewBaseRepository(db)}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `
		INSERT INTO files (id, name, path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, query, file.ID, file.Name, file.Path, file.CreatedAt, file.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (r *fileRepository) Get(ctx context.Context, id uuid.UUID) (*model.File, error) {
	query := `SELECT id, name, path, created_at, updated_at FROM files WHERE id = $1`

	var file model.File
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &file, nil
}
