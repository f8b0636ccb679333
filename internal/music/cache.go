// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultCacheTTL is how long cached search results stay valid.
const DefaultCacheTTL = 6 * time.Hour

// Cache stores search results. It is an optimisation only: a miss or an
// error always falls through to the backend.
type Cache interface {
	Get(ctx context.Context, key string) ([]Song, bool, error)
	Set(ctx context.Context, key string, songs []Song, ttl time.Duration) error
}

// CachedClient wraps a Client so searches are served from cache when
// possible. Lookups are not cached.
func CachedClient(kind Kind, next Client, cache Cache, ttl time.Duration) Client {
	if cache == nil {
		return next
	}
	return &cachedClient{kind: kind, next: next, cache: cache, ttl: ttl}
}

type cachedClient struct {
	kind  Kind
	next  Client
	cache Cache
	ttl   time.Duration
}

func (c *cachedClient) Lookup(ctx context.Context, id string) (Song, error) {
	return c.next.Lookup(ctx, id)
}

func (c *cachedClient) Search(ctx context.Context, query string) ([]Song, error) {
	key := c.key(query)
	songs, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "song cache read failed", "adapter", c.kind.String(), "error", err)
	}
	if ok {
		return songs, nil
	}

	songs, err = c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, songs, c.ttl); err != nil {
		slog.WarnContext(ctx, "song cache write failed", "adapter", c.kind.String(), "error", err)
	}
	return songs, nil
}

func (c *cachedClient) key(query string) string {
	return "onebot:music:search:" + strings.ToLower(c.kind.String()) + ":" + strings.ToLower(strings.TrimSpace(query))
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client redis.UniversalClient
}

// Compile-time interface check.
var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a cache over an existing client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// DialRedisCache connects to addr and verifies the connection.
func DialRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // best effort after a failed ping
		return nil, oops.In("music").With("addr", addr).Hint("check music.cache.addr").Wrapf(err, "connect to redis")
	}
	return &RedisCache{client: client}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Song, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, oops.In("music").With("key", key).Wrapf(err, "redis get")
	}

	var songs []Song
	if err := json.Unmarshal(raw, &songs); err != nil {
		return nil, false, oops.In("music").With("key", key).Wrapf(err, "decode cached songs")
	}
	return songs, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, songs []Song, ttl time.Duration) error {
	if songs == nil {
		songs = []Song{}
	}
	raw, err := json.Marshal(songs)
	if err != nil {
		return oops.In("music").Wrapf(err, "encode songs")
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return oops.In("music").With("key", key).Wrapf(err, "redis set")
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
