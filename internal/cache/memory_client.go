package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// MemoryClient implements Client with an in-process Ristretto cache. Every
// entry costs 1, so maxEntries bounds the number of keys.
type MemoryClient struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemoryClient creates an in-memory cache holding about maxEntries keys.
func NewMemoryClient(maxEntries int) (*MemoryClient, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        int64(maxEntries) * 10,
		MaxCost:            int64(maxEntries),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &MemoryClient{cache: c}, nil
}

// Get retrieves a value from cache.
func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := c.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return val, nil
}

// Set stores a value with TTL. A zero TTL keeps the entry until evicted.
// Writes are applied before Set returns.
func (c *MemoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	c.cache.SetWithTTL(key, value, 1, ttl)
	c.cache.Wait()
	return nil
}

// Delete removes a value.
func (c *MemoryClient) Delete(_ context.Context, key string) error {
	c.cache.Del(key)
	return nil
}

// Close stops the cache's background goroutines.
func (c *MemoryClient) Close() error {
	c.cache.Close()
	return nil
}
