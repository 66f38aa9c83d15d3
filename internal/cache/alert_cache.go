package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"lactacare/internal/alerts"
	"lactacare/internal/domain"

	"go.uber.org/zap"
)

const alertListPrefix = "alerts:list:"

// AlertSource is the authoritative alert listing
type AlertSource interface {
	List(filter alerts.Filter) []domain.AlertRecord
}

// AlertListCache caches filtered alert listings. Keys carry a generation
// number that Invalidate bumps, so a listing computed before a change can
// never be served after it.
type AlertListCache struct {
	cache      Cache
	source     AlertSource
	ttl        time.Duration
	generation atomic.Uint64
	logger     *zap.Logger
}

func NewAlertListCache(c Cache, source AlertSource, ttl time.Duration, logger *zap.Logger) *AlertListCache {
	return &AlertListCache{
		cache:  c,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

func (a *AlertListCache) key(gen uint64, filter alerts.Filter) string {
	return fmt.Sprintf("%s%d:%s", alertListPrefix, gen, filter.Key())
}

// List serves the listing from cache, falling back to the source on a miss or cache error
func (a *AlertListCache) List(ctx context.Context, filter alerts.Filter) []domain.AlertRecord {
	gen := a.generation.Load()
	key := a.key(gen, filter)

	var cached []domain.AlertRecord
	err := GetJSON(ctx, a.cache, key, &cached)
	if err == nil {
		return cached
	}
	if !errors.Is(err, ErrCacheMiss) {
		a.logger.Warn("Alert cache read failed", zap.String("key", key), zap.Error(err))
	}

	records := a.source.List(filter)
	if a.generation.Load() == gen {
		if err := SetJSON(ctx, a.cache, key, records, a.ttl); err != nil {
			a.logger.Warn("Alert cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return records
}

// Invalidate drops every cached listing; it is registered as a dispatcher listener
func (a *AlertListCache) Invalidate(ctx context.Context, change alerts.Change) {
	a.generation.Add(1)
	if err := a.cache.DeleteByPattern(ctx, alertListPrefix+"*"); err != nil {
		a.logger.Warn("Alert cache invalidation failed", zap.Error(err))
		return
	}
	a.logger.Debug("Alert cache invalidated",
		zap.String("change", string(change.Type)),
		zap.Int("records", len(change.Records)),
	)
}
