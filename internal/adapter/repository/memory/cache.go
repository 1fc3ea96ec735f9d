// Package memory holds in-process adapters used when Redis is not configured.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/iho/gopayout/internal/usecase"
)

// Cache is a bounded in-process usecase.Cache. Every entry shares the TTL
// given at construction; the per-call ttl of Set is capped by it.
type Cache struct {
	lru *expirable.LRU[string, []byte]
}

// NewCache creates a Cache holding at most size entries for ttl each.
func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns usecase.ErrCacheMiss when key is absent or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := c.lru.Get(key)
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	return value, nil
}

// Set stores value under key.
func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

// Delete removes keys from the cache.
func (c *Cache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.lru.Remove(key)
	}
	return nil
}
