package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func newService(t *testing.T, maxSize int64) (*Service, *mocks.MockFileRepository, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	repo := new(mocks.MockFileRepository)
	svc, err := NewService(repo, Config{Dir: dir, MaxFileSize: maxSize, BaseURL: "http://localhost:3333"})
	require.NoError(t, err)
	return svc, repo, dir
}

func TestService_Save(t *testing.T) {
	svc, repo, dir := newService(t, 1024)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.File")).Return(nil)

	f, err := svc.Save(context.Background(), "Avatar.PNG", 5, strings.NewReader("image"))

	require.NoError(t, err)
	assert.Equal(t, "Avatar.PNG", f.Name)
	assert.Equal(t, f.ID.String()+".png", f.Path)
	assert.Equal(t, "http://localhost:3333/files/"+f.Path, f.URL)

	data, err := os.ReadFile(filepath.Join(dir, f.Path))
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))
}

func TestService_Save_StripsDirectories(t *testing.T) {
	svc, repo, _ := newService(t, 0)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	f, err := svc.Save(context.Background(), "../../etc/passwd", 4, strings.NewReader("root"))

	require.NoError(t, err)
	assert.Equal(t, "passwd", f.Name)
	assert.Equal(t, f.ID.String(), f.Path)
}

func TestService_Save_TooLarge(t *testing.T) {
	svc, repo, dir := newService(t, 4)

	_, err := svc.Save(context.Background(), "a.txt", 10, strings.NewReader("0123456789"))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	// declared size lies
	_, err = svc.Save(context.Background(), "a.txt", 2, strings.NewReader("0123456789"))
	assert.Equal(t, apperrors.KindInfrastructure, apperrors.KindOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Save_RepositoryError(t *testing.T) {
	svc, repo, dir := newService(t, 0)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Save(context.Background(), "a.txt", 1, strings.NewReader("a"))

	assert.Equal(t, apperrors.KindInfrastructure, apperrors.KindOf(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Save_MissingName(t *testing.T) {
	svc, _, _ := newService(t, 0)

	_, err := svc.Save(context.Background(), "  ", 1, strings.NewReader("a"))

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
