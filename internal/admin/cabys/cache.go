package cabys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/catalog"
)

// DefaultCacheTTL applies when CachedService receives a non-positive TTL.
const DefaultCacheTTL = 6 * time.Hour

// Cache stores search results keyed by normalised term.
type Cache interface {
	Get(ctx context.Context, key string) ([]Entry, bool, error)
	Set(ctx context.Context, key string, entries []Entry, ttl time.Duration) error
}

// CacheObserver is told about every lookup result.
type CacheObserver func(hit bool)

// CachedService decorates a Service with a read-through cache for Search.
// Cache failures are logged and fall through to the wrapped service.
type CachedService struct {
	next     Service
	cache    Cache
	ttl      time.Duration
	logger   *zap.Logger
	observer CacheObserver
}

// NewCachedService wraps next. A nil cache disables caching.
func NewCachedService(next Service, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedService{next: next, cache: cache, ttl: ttl, logger: logger}
}

// OnLookup registers an observer for cache hits and misses.
func (s *CachedService) OnLookup(fn CacheObserver) *CachedService {
	s.observer = fn
	return s
}

// Search serves from the cache when possible.
func (s *CachedService) Search(ctx context.Context, term string) ([]Entry, error) {
	key := cacheKey(term)
	if key == "" {
		return s.next.Search(ctx, term)
	}
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("cabys cache read failed", zap.String("key", key), zap.Error(err))
		} else {
			s.observe(ok)
			if ok {
				return entries, nil
			}
		}
	}

	entries, err := s.next.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries, s.ttl); err != nil {
			s.logger.Warn("cabys cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return entries, nil
}

// Preload is not cached; the Library keeps its own copy.
func (s *CachedService) Preload(ctx context.Context) ([]catalog.Item, error) {
	return s.next.Preload(ctx)
}

func (s *CachedService) observe(hit bool) {
	if s.observer != nil {
		s.observer(hit)
	}
}

func cacheKey(term string) string {
	term = strings.Join(strings.Fields(term), " ")
	if term == "" {
		return ""
	}
	return "cabys:search:" + cases.Fold().String(term)
}

// RedisCache stores results as JSON strings.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache wraps an existing client. The caller keeps ownership of it.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached entries. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Entry, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cabys: redis get: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		_ = c.client.Del(ctx, key).Err()
		return nil, false, fmt.Errorf("cabys: decode cached entries: %w", err)
	}
	return entries, true, nil
}

// Set stores entries with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, entries []Entry, ttl time.Duration) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cabys: encode entries: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cabys: redis set: %w", err)
	}
	return nil
}

// MemoryCache is an in-process Cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entries []Entry
	expires time.Time
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now, entries: make(map[string]memoryEntry)}
}

// Get returns unexpired entries.
func (c *MemoryCache) Get(_ context.Context, key string) ([]Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && !c.now().Before(item.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	out := make([]Entry, len(item.entries))
	copy(out, item.entries)
	return out, true, nil
}

// Set stores a copy of entries.
func (c *MemoryCache) Set(_ context.Context, key string, entries []Entry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]Entry, len(entries))
	copy(stored, entries)
	item := memoryEntry{entries: stored}
	if ttl > 0 {
		item.expires = c.now().Add(ttl)
	}
	c.entries[key] = item
	return nil
}
