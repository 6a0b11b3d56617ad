package overridecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares the override maps between processes. Entries never
// expire and are removed by Forget.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCache connects to url and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, url, prefix string) (*RedisCache, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("overridecache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("overridecache: redis ping: %w", err)
	}
	return NewRedisCacheFromClient(client, prefix), client, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.Cmdable, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Fetch reads locale from redis and loads it on a miss. Redis errors are
// returned without calling load.
func (c *RedisCache) Fetch(ctx context.Context, locale string, load Loader) (map[string]string, error) {
	values, ok, err := c.get(ctx, locale)
	if err != nil {
		return nil, err
	}
	if ok {
		return values, nil
	}
	values, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]string{}
	}
	if err := c.set(ctx, locale, values); err != nil {
		return nil, err
	}
	return maps.Clone(values), nil
}

func (c *RedisCache) get(ctx context.Context, locale string) (map[string]string, bool, error) {
	raw, err := c.client.Get(ctx, Key(c.prefix, locale)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("overridecache: redis get %s: %w", locale, err)
	}
	values := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false, fmt.Errorf("overridecache: decode %s: %w", locale, err)
	}
	return values, true, nil
}

func (c *RedisCache) set(ctx context.Context, locale string, values map[string]string) error {
	if values == nil {
		values = map[string]string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("overridecache: encode %s: %w", locale, err)
	}
	if err := c.client.Set(ctx, Key(c.prefix, locale), string(data), 0).Err(); err != nil {
		return fmt.Errorf("overridecache: redis set %s: %w", locale, err)
	}
	return nil
}

func (c *RedisCache) Forget(ctx context.Context, locales ...string) error {
	if len(locales) == 0 {
		return nil
	}
	keys := make([]string, 0, len(locales))
	for _, locale := range locales {
		keys = append(keys, Key(c.prefix, locale))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("overridecache: redis del: %w", err)
	}
	return nil
}
