// Package cache is a read-through/write-invalidate cache in front of
// catalog reads. It is strictly best-effort: every backing-store failure
// degrades to a miss, so an unreachable redis is never observable to API
// callers as an error. A nil *Client behaves the same way, which is how
// the cache is disabled outright.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nkarpov/sneakershop/internal/logging"
)

const namespace = "catalog:"

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds a cache client. The underlying connection is lazy: nothing
// is dialed until the first operation, and a dead redis just turns every
// call into a miss.
func New(addr, password string, db int, ttl time.Duration) *Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{rdb: rdb, ttl: ttl}
}

func (c *Client) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get loads a cached value into dest. Returns false on miss, expiry, or
// any backing-store/decoding failure.
func (c *Client) Get(ctx context.Context, key string, dest any) bool {
	if !c.enabled() {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).Warn("cache_get_failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logging.FromContext(ctx).Warn("cache_decode_failed", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a value with the configured TTL. Best-effort: failures are
// logged and swallowed.
func (c *Client) Set(ctx context.Context, key string, value any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logging.FromContext(ctx).Warn("cache_encode_failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_set_failed", "key", key, "error", err)
	}
}

// InvalidateCatalog removes every key in the catalog namespace. This is
// the conservative policy: any catalog mutation (price, stock, active
// flag, category set) clears everything rather than tracking which lists
// a product could appear in.
func (c *Client) InvalidateCatalog(ctx context.Context) {
	if !c.enabled() {
		return
	}
	iter := c.rdb.Scan(ctx, 0, namespace+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_scan_failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_del_failed", "error", err)
	}
}

func (c *Client) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Close()
}

func ProductKey(id uuid.UUID) string {
	return namespace + "product:" + id.String()
}

func ProductListKey(category, sort string, page, size int) string {
	return fmt.Sprintf("%sproducts:%s:%s:%d:%d", namespace, category, sort, page, size)
}

func CategoriesKey() string {
	return namespace + "categories"
}
