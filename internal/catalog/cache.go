package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"shopbot/internal/config"
	"shopbot/internal/logger"
)

const (
	itemKeyFormat = "catalog:item:%d"
	activeSetKey  = "catalog:active"
)

// CachedStore decorates a Store with a Redis read-through cache. Catalog
// reads vastly outnumber out-of-band writes, so entries are kept on a short
// TTL instead of being invalidated. Every cache failure falls back to the
// inner store.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedStore builds the cache decorator from the redis config section.
func NewCachedStore(inner Store, cfg config.RedisConfig) *CachedStore {
	return &CachedStore{
		inner: inner,
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

// GetByID serves the item from cache when possible. ErrNotFound outcomes are
// not cached: a deactivated item must disappear within one TTL at most.
func (s *CachedStore) GetByID(ctx context.Context, id int64) (Item, error) {
	key := fmt.Sprintf(itemKeyFormat, id)
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var item Item
		if uerr := json.Unmarshal(raw, &item); uerr == nil {
			logger.SVCCatalog.Debug("item lookup",
				slog.String("event", "item.get"),
				slog.String("cache", "hit"),
				slog.Int64("item_id", id),
			)
			return item, nil
		}
	} else if err != redis.Nil {
		logger.SVCCatalog.Warn("cache read failed",
			slog.String("event", "cache.get"),
			slog.Int64("item_id", id),
			slog.String("err", err.Error()),
		)
	}

	item, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	s.put(ctx, key, item)
	return item, nil
}

// ListActive caches the whole active set under a single key.
func (s *CachedStore) ListActive(ctx context.Context) ([]Item, error) {
	if raw, err := s.rdb.Get(ctx, activeSetKey).Bytes(); err == nil {
		var items []Item
		if uerr := json.Unmarshal(raw, &items); uerr == nil {
			logger.SVCCatalog.Debug("active items",
				slog.String("event", "item.list"),
				slog.String("cache", "hit"),
				slog.Int("count", len(items)),
			)
			return items, nil
		}
	} else if err != redis.Nil {
		logger.SVCCatalog.Warn("cache read failed",
			slog.String("event", "cache.get"),
			slog.String("err", err.Error()),
		)
	}

	items, err := s.inner.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.put(ctx, activeSetKey, items)
	return items, nil
}

// Close releases the redis client.
func (s *CachedStore) Close() error {
	return s.rdb.Close()
}

func (s *CachedStore) put(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		logger.SVCCatalog.Warn("cache write failed",
			slog.String("event", "cache.set"),
			slog.String("err", err.Error()),
		)
	}
}
