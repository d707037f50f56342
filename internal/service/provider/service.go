// Package provider lists bookable providers. The list is read on every
// booking screen and changes rarely, so it is cached in process.
package provider

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const cacheKey = "providers"

type Service struct {
	users        repository.UserRepository
	cache        *cache.Cache
	filesBaseURL string
}

func NewService(users repository.UserRepository, ttl time.Duration, filesBaseURL string) *Service {
	return &Service{
		users:        users,
		cache:        cache.New(ttl, 2*ttl),
		filesBaseURL: filesBaseURL,
	}
}

// List returns all providers with their avatar URL.
func (s *Service) List(ctx context.Context) ([]*model.UserSummary, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]*model.UserSummary), nil
	}

	providers, err := s.users.ListProviders(ctx)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to list providers", err)
	}
	if providers == nil {
		providers = []*model.UserSummary{}
	}
	for _, p := range providers {
		if p.AvatarPath != nil {
			p.AvatarURL = model.FileURL(s.filesBaseURL, *p.AvatarPath)
		}
	}

	s.cache.SetDefault(cacheKey, providers)
	return providers, nil
}

// Invalidate drops the cached list after a provider signs up or changes.
func (s *Service) Invalidate() {
	s.cache.Delete(cacheKey)
}
