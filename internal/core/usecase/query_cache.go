package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	CacheKeyPrefix  = "filtered_properties_cache_"
	DefaultCacheTTL = 5 * time.Minute
)

// cacheEntry - формат записи в хранилище.
type cacheEntry struct {
	Data      domain.QueryResult    `json:"data"`
	Timestamp int64                 `json:"timestamp"`
	Filters   domain.FilterCriteria `json:"filters"`
}

// QueryCache кэширует результаты выборки по каноническому ключу фильтров.
// Кэш работает по принципу best-effort: ошибки хранилища не доходят до вызывающего.
type QueryCache struct {
	store port.KeyValueStore
	clock clockwork.Clock
	ttl   time.Duration
}

func NewQueryCache(store port.KeyValueStore, clock clockwork.Clock, ttl time.Duration) *QueryCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &QueryCache{store: store, clock: clock, ttl: ttl}
}

// Canonicalize строит ключ из непустых полей фильтра. json.Marshal сортирует
// ключи map, поэтому порядок сборки фильтра на ключ не влияет.
func Canonicalize(filters domain.FilterCriteria) string {
	data, err := json.Marshal(filters.Canonical())
	if err != nil {
		return "{}"
	}
	return string(data)
}

func cacheKey(filters domain.FilterCriteria) string {
	return CacheKeyPrefix + Canonicalize(filters)
}

// Get возвращает запись, если она моложе TTL. Просроченные и битые записи удаляются.
func (c *QueryCache) Get(ctx context.Context, filters domain.FilterCriteria) (domain.QueryResult, bool) {
	key := cacheKey(filters)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "QueryCache", "cache_key": key})

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			logger.Debug("Cache read failed, treating as miss", port.Fields{"error": err.Error()})
		}
		return domain.QueryResult{}, false
	}

	entry, ok := c.decode(raw)
	if !ok || !c.fresh(entry) {
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			logger.Debug("Failed to delete stale cache entry", port.Fields{"error": delErr.Error()})
		}
		return domain.QueryResult{}, false
	}

	return entry.Data.Clone(), true
}

// Put сохраняет результат с текущим временем. Ошибки записи только логируются.
func (c *QueryCache) Put(ctx context.Context, filters domain.FilterCriteria, result domain.QueryResult) {
	key := cacheKey(filters)
	entry := cacheEntry{
		Data:      result,
		Timestamp: c.clock.Now().UnixMilli(),
		Filters:   filters,
	}

	data, err := json.Marshal(entry)
	if err == nil {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Debug("Cache write failed, ignoring", port.Fields{
			"component": "QueryCache",
			"cache_key": key,
			"error":     err.Error(),
		})
	}
}

// Purge удаляет все просроченные и нечитаемые записи.
func (c *QueryCache) Purge(ctx context.Context) (int, error) {
	keys, err := c.store.Keys(ctx, CacheKeyPrefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		raw, err := c.store.Get(ctx, key)
		if err != nil {
			continue
		}
		if entry, ok := c.decode(raw); ok && c.fresh(entry) {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (c *QueryCache) decode(raw []byte) (cacheEntry, bool) {
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Timestamp <= 0 {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *QueryCache) fresh(entry cacheEntry) bool {
	age := c.clock.Now().Sub(time.UnixMilli(entry.Timestamp))
	return age < c.ttl
}
