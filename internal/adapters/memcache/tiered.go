package memcache

import (
	"context"

	"github.com/samirrijal/hotspotmap/internal/core/ports"
)

// Tiered reads from near first and falls back to far, copying far hits
// into near. Writes and deletes go to both.
type Tiered struct {
	near    ports.CacheService
	far     ports.CacheService
	nearTTL int
}

// NewTiered layers near over far. Near entries live for nearTTL seconds.
func NewTiered(near, far ports.CacheService, nearTTL int) *Tiered {
	return &Tiered{near: near, far: far, nearTTL: nearTTL}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := t.near.Get(ctx, key); err == nil {
		return b, nil
	}
	b, err := t.far.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = t.near.Set(ctx, key, b, t.nearTTL)
	return b, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	nearTTL := t.nearTTL
	if ttlSeconds > 0 && ttlSeconds < nearTTL {
		nearTTL = ttlSeconds
	}
	_ = t.near.Set(ctx, key, value, nearTTL)
	return t.far.Set(ctx, key, value, ttlSeconds)
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	_ = t.near.Delete(ctx, key)
	return t.far.Delete(ctx, key)
}
