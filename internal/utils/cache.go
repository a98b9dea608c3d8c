package utils

import (
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem wraps cached data with its expiry time.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is an in-process LRU cache with per-entry TTL. Rendered listing
// and detail pages are stored here under logical keys; mutations delete
// the keys they make stale.
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
}

// NewCache builds a cache holding up to 500 entries. One instance is
// created at startup and shared through the handlers and services.
func NewCache() *Cache {
	l, err := lru.New[string, CacheItem](500)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
	return &Cache{lruCache: l}
}

// Set stores data under key for the given TTL.
func (c *Cache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached data, or nil when missing or expired.
func (c *Cache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.Data
}

// Delete removes one key.
func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}
