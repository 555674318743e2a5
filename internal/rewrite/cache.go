package rewrite

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores successful rewrite results keyed by request fingerprint.
// Implementations are best-effort: a miss is always acceptable.
type Cache interface {
	Get(key string) (string, bool)
	Put(key, text string)
}

// CacheKey fingerprints a request. Two requests share a key only when
// content, language, doc style, and target symbols all match.
func CacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Language))
	h.Write([]byte{0})
	h.Write([]byte(req.DocStyle))
	h.Write([]byte{0})
	for _, sym := range req.Symbols {
		h.Write([]byte(sym))
		h.Write([]byte{0})
	}
	h.Write([]byte{0})
	h.Write([]byte(req.Content))
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryCache is a fixed-capacity LRU over rewrite results.
type MemoryCache struct {
	lru *lru.Cache[string, string]
}

// DefaultMemoryCacheEntries bounds the in-memory tier when no size is given.
const DefaultMemoryCacheEntries = 1024

func NewMemoryCache(maxEntries int) (*MemoryCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryCacheEntries
	}
	c, err := lru.New[string, string](maxEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: c}, nil
}

func (c *MemoryCache) Get(key string) (string, bool) { return c.lru.Get(key) }
func (c *MemoryCache) Put(key, text string)          { c.lru.Add(key, text) }
func (c *MemoryCache) Len() int                      { return c.lru.Len() }

// LayeredCache reads through a fast tier into a slow one, promoting slow-tier
// hits so repeated lookups stay fast.
type LayeredCache struct {
	fast Cache
	slow Cache
}

func NewLayeredCache(fast, slow Cache) *LayeredCache {
	return &LayeredCache{fast: fast, slow: slow}
}

func (c *LayeredCache) Get(key string) (string, bool) {
	if text, ok := c.fast.Get(key); ok {
		return text, true
	}
	if text, ok := c.slow.Get(key); ok {
		c.fast.Put(key, text)
		return text, true
	}
	return "", false
}

func (c *LayeredCache) Put(key, text string) {
	c.fast.Put(key, text)
	c.slow.Put(key, text)
}

// WithCache memoizes successful rewrites. Errors are never cached.
func WithCache(cache Cache) Middleware {
	return func(next Service) Service {
		if cache == nil {
			return next
		}
		return NewCached(next, cache)
	}
}

// Cached wraps a Service with a Cache and counts hits and misses.
type Cached struct {
	next   Service
	cache  Cache
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCached(next Service, cache Cache) *Cached {
	return &Cached{next: next, cache: cache}
}

// CacheMetrics is a point-in-time hit/miss snapshot.
type CacheMetrics struct {
	Hits   int64
	Misses int64
}

func (c *Cached) Name() string { return c.next.Name() }
func (c *Cached) Close() error { return c.next.Close() }

func (c *Cached) Metrics() CacheMetrics {
	return CacheMetrics{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *Cached) Rewrite(ctx context.Context, req Request) (string, error) {
	key := CacheKey(req)
	if text, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return text, nil
	}
	c.misses.Add(1)
	text, err := c.next.Rewrite(ctx, req)
	if err != nil {
		return "", err
	}
	c.cache.Put(key, text)
	return text, nil
}
