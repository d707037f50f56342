package session

import (
	"context"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	jwt    auth.JWTService
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, jwt auth.JWTService) *Service {
	return &Service{users: users, hasher: hasher, jwt: jwt}
}

// Create checks the credentials and issues a bearer token. Unknown emails
// and wrong passwords fail the same way.
func (s *Service) Create(ctx context.Context, req *model.SessionRequest) (*model.Session, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Provider)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to issue token", err)
	}

	return &model.Session{User: user, Token: token}, nil
}
