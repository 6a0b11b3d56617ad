package overridecache

import (
	"context"
	"maps"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
)

// DefaultPrefix namespaces the cache keys of every locale.
const DefaultPrefix = "override_translations"

// DefaultTTL bounds how long an override map lives in the process cache.
// Entries are normally dropped by Forget well before it elapses; an expired
// entry is simply loaded again.
const DefaultTTL = 24 * time.Hour

// Loader reads the override map of a locale from the source of truth.
type Loader func(ctx context.Context) (map[string]string, error)

// Cache stores the override map of each locale until it is forgotten.
type Cache interface {
	// Fetch returns the cached map of locale, calling load on a miss and
	// caching its result. A loaded empty map is cached too.
	Fetch(ctx context.Context, locale string, load Loader) (map[string]string, error)
	Forget(ctx context.Context, locales ...string) error
}

// Key returns the cache key of locale, e.g. "override_translations.fr".
func Key(prefix, locale string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "." + locale
}

// ServiceConfig returns the go-repository-cache settings used for the
// process cache. Early refreshes are disabled so a map is only reloaded
// after it was forgotten or expired.
func ServiceConfig(ttl time.Duration) repocache.Config {
	cfg := repocache.DefaultConfig()
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cfg.TTL = ttl
	cfg.EarlyRefresh = nil
	cfg.MissingRecordStorage = false
	return cfg
}

// ServiceCache keeps override maps in a go-repository-cache CacheService.
type ServiceCache struct {
	service repocache.CacheService
	prefix  string
}

// NewServiceCache wraps an existing cache service.
func NewServiceCache(service repocache.CacheService, prefix string) *ServiceCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ServiceCache{service: service, prefix: prefix}
}

// NewMemoryCache builds a process wide cache on the default in-memory
// cache service.
func NewMemoryCache(ttl time.Duration, prefix string) (*ServiceCache, error) {
	service, err := repocache.NewCacheService(ServiceConfig(ttl))
	if err != nil {
		return nil, err
	}
	return NewServiceCache(service, prefix), nil
}

func (c *ServiceCache) Fetch(ctx context.Context, locale string, load Loader) (map[string]string, error) {
	values, err := repocache.GetOrFetch[map[string]string](ctx, c.service, Key(c.prefix, locale),
		func(ctx context.Context) (map[string]string, error) {
			loaded, err := load(ctx)
			if err != nil {
				return nil, err
			}
			if loaded == nil {
				return map[string]string{}, nil
			}
			return maps.Clone(loaded), nil
		})
	if err != nil {
		return nil, err
	}
	if values == nil {
		return map[string]string{}, nil
	}
	return maps.Clone(values), nil
}

func (c *ServiceCache) Forget(ctx context.Context, locales ...string) error {
	if len(locales) == 0 {
		return nil
	}
	keys := make([]string, 0, len(locales))
	for _, locale := range locales {
		keys = append(keys, Key(c.prefix, locale))
	}
	return c.service.InvalidateKeys(ctx, keys)
}

// Uncached loads on every Fetch.
type Uncached struct{}

func (Uncached) Fetch(ctx context.Context, _ string, load Loader) (map[string]string, error) {
	values, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (Uncached) Forget(context.Context, ...string) error { return nil }
