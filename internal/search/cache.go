package search

import (
	"sync"
	"time"
)

// resultCache is a short-TTL, query-string-keyed cache over raw indexer
// results, matching spec.md §4.4 step 10 ("result caching by query string
// with short TTL") and the teacher's mutex-guarded map cache style in
// internal/indexer/cardigann/cache.go.
type resultCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]cacheEntry
}

type cacheEntry struct {
	releases []Release
	expires  time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl, now: time.Now, m: make(map[string]cacheEntry)}
}

func (c *resultCache) get(query string) ([]Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.m[query]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.releases, true
}

func (c *resultCache) set(query string, releases []Release) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[query] = cacheEntry{releases: releases, expires: c.now().Add(c.ttl)}
}
