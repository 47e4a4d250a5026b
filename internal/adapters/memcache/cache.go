// Package memcache holds the in-process chart cache and the tiered cache that
// puts it in front of a shared one.
package memcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

var (
	ErrKeyNotFound = errors.New("key not found in cache")
	ErrSetFailed   = errors.New("cache rejected the value")
)

// Cache implements ports.CacheService on a ristretto cache. Cost is the
// value size in bytes, so MaxCost bounds memory.
type Cache struct {
	cache *ristretto.Cache
}

// New creates a cache holding at most maxBytes of values.
func New(maxBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * (maxBytes / 1024),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &Cache{cache: c}, nil
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, ErrKeyNotFound
	}
	b, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("value not of expected type %T returned from cache", value)
	}
	return b, nil
}

// Set stores a value with a TTL in seconds. ttlSeconds <= 0 never expires.
// The write becomes visible once ristretto's buffers drain.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if !c.cache.SetWithTTL(key, value, int64(len(value)), time.Duration(ttlSeconds)*time.Second) {
		return ErrSetFailed
	}
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.cache.Del(key)
	return nil
}

// Wait blocks until pending writes are applied.
func (c *Cache) Wait() {
	c.cache.Wait()
}

// Close stops the cache's goroutines.
func (c *Cache) Close() {
	c.cache.Close()
}
