package repository

import (
	"context"
	"sync/atomic"
	"time"

	"innbook/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverCache serves from the primary (redis) cache and degrades to the
// in-memory fallback when it fails, probing the primary again after a
// cooldown. Losing the cache entirely is acceptable; serving stale data
// after a mutation is not, so invalidation always goes to both.
type FailoverCache struct {
	primary   domain.Cache
	fallback  domain.Cache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

const recoveryCooldown = time.Minute

func NewFailoverCache(primary, fallback domain.Cache, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverCache) primaryUsable() bool {
	if !c.isDown.Load() {
		return true
	}
	last := time.Unix(0, c.lastCheck.Load())
	return time.Since(last) > recoveryCooldown
}

func (c *FailoverCache) markDown() {
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().UnixNano())
}

func (c *FailoverCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.primaryUsable() {
		data, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			c.isDown.Store(false)
			return data, ok, nil
		}
		c.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
		c.markDown()
	}
	return c.fallback.Get(ctx, key)
}

func (c *FailoverCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.primaryUsable() {
		err := c.primary.Set(ctx, key, value, ttl)
		if err == nil {
			c.isDown.Store(false)
			return nil
		}
		c.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
		c.markDown()
	}
	return c.fallback.Set(ctx, key, value, ttl)
}

func (c *FailoverCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	// Both layers must drop their keys, otherwise a recovered primary
	// could resurrect pre-mutation entries.
	perr := c.primary.InvalidatePrefix(ctx, prefix)
	ferr := c.fallback.InvalidatePrefix(ctx, prefix)
	if perr != nil {
		c.logger.Warn().Err(perr).Str("prefix", prefix).Msg("primary cache invalidation failed")
		c.markDown()
		return perr
	}
	c.isDown.Store(false)
	return ferr
}
