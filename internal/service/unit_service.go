package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"innbook/internal/database"
	"innbook/internal/domain"
	"innbook/internal/models"

	"github.com/rs/zerolog"
)

type UnitService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

func NewUnitService(store domain.Store, cache domain.Cache, cacheTTL time.Duration, logger *zerolog.Logger) *UnitService {
	if cacheTTL <= 0 {
		cacheTTL = models.DefaultCacheTTL * time.Second
	}
	return &UnitService{store: store, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *UnitService) CreateUnit(ctx context.Context, name, description string, capacity int64) (*models.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: unit name is required", ErrInvalidInput)
	}

	unit := &models.Unit{Name: name, Description: description, Capacity: capacity, IsActive: true}
	if err := s.store.CreateUnit(ctx, unit); err != nil {
		return nil, err
	}

	s.invalidateLists(ctx)
	return unit, nil
}

func (s *UnitService) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	return s.store.GetUnit(ctx, id)
}

func (s *UnitService) GetUnitByName(ctx context.Context, name string) (*models.Unit, error) {
	return s.store.GetUnitByName(ctx, name)
}

func (s *UnitService) ListUnits(ctx context.Context, limit, offset int) ([]*models.Unit, error) {
	key := fmt.Sprintf("units:list:%d:%d", limit, offset)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached []*models.Unit
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	units, err := s.store.ListUnits(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(units); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("cache write error")
			}
		}
	}
	return units, nil
}

// SeedUnits creates the configured units that do not exist yet. Existing
// units are left untouched so manual edits survive restarts.
func (s *UnitService) SeedUnits(ctx context.Context, units []models.Unit) error {
	for i := range units {
		unit := units[i]
		if _, err := s.store.GetUnitByName(ctx, unit.Name); err == nil {
			continue
		} else if !errors.Is(err, database.ErrUnitNotFound) {
			return fmt.Errorf("seed unit %q: %w", unit.Name, err)
		}

		unit.IsActive = true
		if err := s.store.CreateUnit(ctx, &unit); err != nil {
			return fmt.Errorf("seed unit %q: %w", unit.Name, err)
		}
		s.logger.Info().Str("unit", unit.Name).Msg("seeded unit")
	}
	if len(units) > 0 {
		s.invalidateLists(ctx)
	}
	return nil
}

func (s *UnitService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, "units:"); err != nil {
		s.logger.Warn().Err(err).Msg("unit cache invalidation error")
	}
}
