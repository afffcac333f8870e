package dedupe

import (
	"sync"
	"time"
)

// Cache remembers CT-e numbers imported recently, so re-submitted
// batches skip a database round-trip for documents this process already
// saw. The store's uniqueness constraint remains the source of truth;
// the cache is only a fast path.
type Cache struct {
	mu    sync.Mutex
	at    map[string]time.Time
	order []string
	limit int
	ttl   time.Duration
}

// New creates a cache bounded by capacity and ttl.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		at:    make(map[string]time.Time, capacity),
		order: make([]string, 0, capacity),
		limit: capacity,
		ttl:   ttl,
	}
}

// Seen reports whether numero was remembered inside the ttl window.
func (c *Cache) Seen(numero string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.at[numero]
	return ok && now.Sub(ts) <= c.ttl
}

// Remember records numero, evicting expired entries and, past capacity,
// the oldest ones.
func (c *Cache) Remember(numero string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.at[numero]; !ok {
		c.order = append(c.order, numero)
	}
	c.at[numero] = now
	c.evict(now)
}

func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 {
		head := c.order[0]
		ts, ok := c.at[head]
		if ok && len(c.at) <= c.limit && !ts.Before(cutoff) {
			break
		}
		c.order = c.order[1:]
		if ok {
			delete(c.at, head)
		}
	}
}
