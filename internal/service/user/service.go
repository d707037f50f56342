package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

// ProviderCache is told when the provider list may have changed.
type ProviderCache interface {
	Invalidate()
}

type Service struct {
	repo      repository.UserRepository
	files     repository.FileRepository
	hasher    security.PasswordHasher
	providers ProviderCache
}

func NewService(repo repository.UserRepository, files repository.FileRepository, hasher security.PasswordHasher, providers ProviderCache) *Service {
	return &Service{
		repo:      repo,
		files:     files,
		hasher:    hasher,
		providers: providers,
	}
}

// Create registers a user. Emails are unique.
func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperrors.Validation("user already exists")
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Provider:     req.Provider,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.Validation("user already exists")
		}
		return nil, apperrors.Infrastructure("failed to create user", err)
	}

	if user.Provider {
		s.providers.Invalidate()
	}
	return user, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

// Update changes the profile of userID. A new password needs the old one
// and a matching confirmation.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.repo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, apperrors.Infrastructure("failed to look up user", err)
		}
		if existing != nil {
			return nil, apperrors.Validation("user already exists")
		}
		user.Email = *req.Email
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := s.applyPassword(user, req); err != nil {
		return nil, err
	}

	if req.AvatarID != nil {
		avatarID, err := uuid.Parse(*req.AvatarID)
		if err != nil {
			return nil, apperrors.Validation("invalid avatar_id")
		}
		file, err := s.files.Get(ctx, avatarID)
		if err != nil {
			return nil, apperrors.Infrastructure("failed to load avatar", err)
		}
		if file == nil {
			return nil, apperrors.Validation("avatar not found")
		}
		user.AvatarID = &avatarID
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.Validation("user already exists")
		}
		return nil, apperrors.Infrastructure("failed to update user", err)
	}

	if user.Provider {
		s.providers.Invalidate()
	}
	return user, nil
}

func (s *Service) applyPassword(user *model.User, req *model.UpdateUserRequest) error {
	if req.Password == nil {
		if req.OldPassword != nil {
			return apperrors.Validation("password is required when old_password is given")
		}
		return nil
	}

	if req.OldPassword == nil {
		return apperrors.Validation("old_password is required to change the password")
	}
	if req.ConfirmPassword == nil || *req.ConfirmPassword != *req.Password {
		return apperrors.Validation("password confirmation does not match")
	}
	if err := s.hasher.Compare(user.PasswordHash, *req.OldPassword); err != nil {
		return apperrors.Unauthorized("password does not match")
	}

	hash, err := s.hashPassword(*req.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return "", apperrors.Validation("password must have at least 6 characters")
		}
		return "", apperrors.Infrastructure("failed to hash password", err)
	}
	return hash, nil
}
