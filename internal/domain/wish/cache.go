// internal/domain/wish/cache.go
package wish

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/pkg/metrics"
)

const rankingVersionKey = "wishes:ranking:version"

// Store is the key-value surface the ranking cache needs. The redis client
// wrapper implements it.
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetInt(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// RankingCache keeps the top and recent listings. Keys carry a version
// number; bumping it on any wish mutation orphans every cached listing,
// which then expires on its own TTL.
type RankingCache struct {
	store Store
	ttl   time.Duration
	log   *logrus.Logger
}

// NewRankingCache creates a ranking cache. A nil store disables caching.
func NewRankingCache(store Store, ttl time.Duration, log *logrus.Logger) *RankingCache {
	return &RankingCache{store: store, ttl: ttl, log: log}
}

func (c *RankingCache) enabled() bool {
	return c != nil && c.store != nil && c.ttl > 0
}

// Load returns the cached listing or fills it from load
func (c *RankingCache) Load(ctx context.Context, kind string, limit int, load func(ctx context.Context) ([]Wish, error)) ([]Wish, error) {
	if !c.enabled() {
		return load(ctx)
	}

	version, err := c.store.GetInt(ctx, rankingVersionKey)
	if err != nil {
		c.log.WithError(err).Warn("ranking cache unavailable")
		return load(ctx)
	}
	key := fmt.Sprintf("wishes:%s:%d:v%d", kind, limit, version)

	var cached []Wish
	found, err := c.store.GetJSON(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("failed to read ranking cache")
	}
	metrics.RecordRankingCache(found && err == nil)
	if found && err == nil {
		return cached, nil
	}

	wishes, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetJSON(ctx, key, wishes, c.ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("failed to write ranking cache")
	}
	return wishes, nil
}

// Invalidate drops every cached listing
func (c *RankingCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if _, err := c.store.Incr(ctx, rankingVersionKey); err != nil {
		c.log.WithError(err).Warn("failed to invalidate ranking cache")
	}
}
