package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
)

func TestFileRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFileRepository(db)

	f := &model.File{Base: model.Base{ID: uuid.New()}, Name: "avatar.png", Path: "abc.png"}
	mock.ExpectExec("INSERT INTO files").
		WithArgs(f.ID, "avatar.png", "abc.png", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), f))
	assert.False(t, f.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_Get(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFileRepository(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT id, name, path, created_at, updated_at FROM files WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "path", "created_at", "updated_at"}).
			AddRow(id, "avatar.png", "abc.png", now, now))

	f, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "abc.png", f.Path)

	mock.ExpectQuery("FROM files").WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	f, err = repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}
