package api

import (
	"sync"
	"time"
)

// responseCache holds rendered JSON payloads for the public links view.
// Entries expire on a short TTL and are dropped eagerly when the
// revalidation endpoint fires, so the page rebuilds with fresh data on the
// next request.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: map[string]cacheEntry{},
	}
}

func (c *responseCache) get(key string, now time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || now.After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (c *responseCache) put(key string, body []byte, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{body: body, expires: now.Add(c.ttl)}
}

// invalidate drops every cached variant. The cached page is one logical
// path; its query variants all stale together.
func (c *responseCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
}
