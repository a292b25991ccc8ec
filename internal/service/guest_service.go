package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"innbook/internal/domain"
	"innbook/internal/models"

	"github.com/rs/zerolog"
)

type GuestService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

func NewGuestService(store domain.Store, cache domain.Cache, cacheTTL time.Duration, logger *zerolog.Logger) *GuestService {
	if cacheTTL <= 0 {
		cacheTTL = models.DefaultCacheTTL * time.Second
	}
	return &GuestService{store: store, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *GuestService) CreateGuest(ctx context.Context, name, email, phone string) (*models.Guest, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: guest name is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid guest email is required", ErrInvalidInput)
	}

	guest := &models.Guest{Name: name, Email: email, Phone: strings.TrimSpace(phone)}
	if err := s.store.CreateGuest(ctx, guest); err != nil {
		return nil, err
	}

	s.invalidateLists(ctx)
	return guest, nil
}

func (s *GuestService) GetGuest(ctx context.Context, id int64) (*models.Guest, error) {
	return s.store.GetGuest(ctx, id)
}

func (s *GuestService) ListGuests(ctx context.Context, limit, offset int) ([]*models.Guest, error) {
	key := fmt.Sprintf("guests:list:%d:%d", limit, offset)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached []*models.Guest
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	guests, err := s.store.ListGuests(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(guests); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("cache write error")
			}
		}
	}
	return guests, nil
}

func (s *GuestService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, "guests:"); err != nil {
		s.logger.Warn().Err(err).Msg("guest cache invalidation error")
	}
}
