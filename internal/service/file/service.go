package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type Config struct {
	Dir         string
	MaxFileSize int64
	BaseURL     string
}

// Service stores uploads on local disk under a random name.
type Service struct {
	repo   repository.FileRepository
	config Config
}

func NewService(repo repository.FileRepository, config Config) (*Service, error) {
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &Service{repo: repo, config: config}, nil
}

// Save copies r to disk and records it. name is the client's filename and is
// only kept for display.
func (s *Service) Save(ctx context.Context, name string, size int64, r io.Reader) (*model.File, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, apperrors.Validation("file name is required")
	}
	if s.config.MaxFileSize > 0 && size > s.config.MaxFileSize {
		return nil, apperrors.Validation(fmt.Sprintf("file exceeds %d bytes", s.config.MaxFileSize))
	}

	id := uuid.New()
	stored := id.String() + strings.ToLower(filepath.Ext(name))
	target := filepath.Join(s.config.Dir, stored)

	if err := s.write(target, r); err != nil {
		return nil, apperrors.Infrastructure("failed to store file", err)
	}

	f := &model.File{
		Base: model.Base{ID: id},
		Name: name,
		Path: stored,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		_ = os.Remove(target)
		return nil, apperrors.Infrastructure("failed to record file", err)
	}

	f.URL = model.FileURL(s.config.BaseURL, f.Path)
	return f, nil
}

func (s *Service) write(target string, r io.Reader) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	src := r
	if s.config.MaxFileSize > 0 {
		src = io.LimitReader(r, s.config.MaxFileSize+1)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.config.MaxFileSize > 0 && n > s.config.MaxFileSize {
		err = fmt.Errorf("file exceeds %d bytes", s.config.MaxFileSize)
	}
	if err != nil {
		_ = os.Remove(target)
	}
	return err
}
