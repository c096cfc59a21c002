package tenantdb

import (
	"sync"
	"time"
)

// connCache is the in-memory store behind the Registry: tenant id mapped to
// connection string with a sliding expiration and an LRU bound on entry count.
// Entries are replaced atomically, never mutated in place.
type connCache struct {
	mu         sync.Mutex
	items      map[string]cacheItem
	lru        []string // eviction order, least recently used first
	maxEntries int
	ttl        time.Duration
	stop       chan struct{}
	done       chan struct{}
	closed     bool
}

type cacheItem struct {
	connString string
	expiresAt  time.Time
}

// cleanupInterval is how often expired entries are swept out. Expired entries
// are also dropped lazily on access, so the sweep only bounds memory held by
// tenants that stopped sending traffic.
const cleanupInterval = time.Minute

func newConnCache(ttl time.Duration, maxEntries int) *connCache {
	c := &connCache{
		items:      make(map[string]cacheItem),
		lru:        make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		ttl:        ttl,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// get returns the live entry for key, extending its expiration (sliding TTL).
func (c *connCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return "", false
	}

	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		c.removeLRU(key)
		return "", false
	}

	// Each access within the window extends the expiration.
	item.expiresAt = time.Now().Add(c.ttl)
	c.items[key] = item
	c.touchLRU(key)

	return item.connString, true
}

func (c *connCache) set(key, connString string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxEntries {
		if len(c.lru) > 0 {
			evict := c.lru[0]
			delete(c.items, evict)
			c.lru = c.lru[1:]
		}
	}

	c.items[key] = cacheItem{
		connString: connString,
		expiresAt:  time.Now().Add(c.ttl),
	}
	c.touchLRU(key)
}

// delete removes the entry for key, returning the removed connection string.
func (c *connCache) delete(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return "", false
	}
	delete(c.items, key)
	c.removeLRU(key)
	return item.connString, true
}

func (c *connCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheItem)
	c.lru = c.lru[:0]
}

func (c *connCache) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *connCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			c.removeLRU(key)
		}
	}
}

// touchLRU moves the key to the most-recently-used end.
func (c *connCache) touchLRU(key string) {
	c.removeLRU(key)
	c.lru = append(c.lru, key)
}

func (c *connCache) removeLRU(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			return
		}
	}
}

// close stops the cleanup goroutine and waits for it to finish.
func (c *connCache) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
}
