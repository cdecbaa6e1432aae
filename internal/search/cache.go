package search

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/at-ishikawa/pacha/internal/dictionary"
)

type cacheKey struct {
	mode   Mode
	folded string
}

type cacheEntry struct {
	entries   []dictionary.Entry
	expiresAt time.Time
}

// resultCache is a size-bounded LRU of search results with a per-entry TTL.
// Results are copied in and out so callers never share slices with the cache.
type resultCache struct {
	lru *lru.Cache
	ttl time.Duration
	now func() time.Time
}

func newResultCache(size int, ttl time.Duration) (*resultCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("lru.New(%d) > %w", size, err)
	}
	return &resultCache{
		lru: cache,
		ttl: ttl,
		now: time.Now,
	}, nil
}

func (c *resultCache) get(key cacheKey) ([]dictionary.Entry, bool) {
	val, found := c.lru.Get(key)
	if !found {
		return nil, false
	}
	entry := val.(cacheEntry)
	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return dictionary.CloneEntries(entry.entries), true
}

func (c *resultCache) set(key cacheKey, entries []dictionary.Entry) {
	c.lru.Add(key, cacheEntry{
		entries:   dictionary.CloneEntries(entries),
		expiresAt: c.now().Add(c.ttl),
	})
}
