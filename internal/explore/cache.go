package explore

import (
	"container/list"
	"sync"
)

// resultCache is a thread-safe LRU cache of computed view results, keyed by
// the canonical request key. Results are immutable once computed, so entries
// are shared, not copied.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key    string
	result *ViewResult
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a cached result. Returns nil if not found.
func (c *resultCache) Get(key string) *ViewResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[key]
	if !exists {
		return nil
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result
}

// Put adds a result to the cache, evicting the least recently used if full.
func (c *resultCache) Put(key string, result *ViewResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[key]; exists {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).result = result
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			entry := oldest.Value.(*cacheEntry)
			delete(c.cache, entry.key)
			c.order.Remove(oldest)
		}
	}

	elem := c.order.PushFront(&cacheEntry{key: key, result: result})
	c.cache[key] = elem
}

// Len returns the number of cached results.
func (c *resultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
