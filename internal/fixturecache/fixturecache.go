// Package fixturecache optionally caches normalized event series
// (post Sort/Correct/BracketSnapshots) in Redis, keyed by fixture
// path, so repeated runs against the same fixture skip ingestion.
// Adapted from exchange-user/internal/middleware's redis.Cmdable
// wrapping pattern.
package fixturecache

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/exchange/hftbacktest/event"
)

const keyPrefix = "hftbacktest:fixture:"

// Cache is a Redis-backed cache of normalized event series.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// New wraps an already-constructed redis.Cmdable (a *redis.Client, or
// a fake satisfying the interface in tests). ttl of zero means no
// expiry.
func New(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Dial connects to addr/password/db with a standard *redis.Client.
func Dial(addr, password string, db int) *Cache {
	return New(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), 0)
}

// Get returns the cached series for key, and false on a cache miss.
func (c *Cache) Get(ctx context.Context, key string) ([]event.Row, bool, error) {
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rows []event.Row
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rows); err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// Put stores rows under key.
func (c *Cache) Put(ctx context.Context, key string, rows []event.Row) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rows); err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+key, buf.Bytes(), c.ttl).Err()
}
