package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a TTL cache whose entries belong to a scope (a user, in
// practice). Entries older than ttl read as absent; past maxSize the least
// recently used entry is evicted. A whole scope can be dropped at once.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	items  map[entryKey]*list.Element
	scopes map[string]map[entryKey]struct{}
	lru    *list.List
	stats  Stats
}

// Stats counts lookups and removals since the cache was created.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Expired   uint64
}

type entryKey struct {
	scope string
	key   string
}

type cacheItem[T any] struct {
	id        entryKey
	data      T
	expiresAt time.Time
}

// NewLRUCache creates a cache holding at most maxSize entries for ttl each.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[entryKey]*list.Element),
		scopes:  make(map[string]map[entryKey]struct{}),
		lru:     list.New(),
	}
}

func (c *LRUCache[T]) Get(scope, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[entryKey{scope, key}]
	if !ok {
		c.stats.Misses++
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if c.now().After(item.expiresAt) {
		c.remove(elem)
		c.stats.Expired++
		c.stats.Misses++
		return zero, false
	}

	c.lru.MoveToFront(elem)
	c.stats.Hits++
	return item.data, true
}

func (c *LRUCache[T]) Set(scope, key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := entryKey{scope, key}
	item := &cacheItem[T]{id: id, data: data, expiresAt: c.now().Add(c.ttl)}

	if elem, ok := c.items[id]; ok {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	c.items[id] = c.lru.PushFront(item)
	keys := c.scopes[scope]
	if keys == nil {
		keys = make(map[entryKey]struct{})
		c.scopes[scope] = keys
	}
	keys[id] = struct{}{}

	for c.lru.Len() > c.maxSize {
		c.remove(c.lru.Back())
		c.stats.Evictions++
	}
}

// DeleteScope drops every entry of scope and reports how many were removed.
func (c *LRUCache[T]) DeleteScope(scope string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.scopes[scope]
	n := len(keys)
	for id := range keys {
		c.remove(c.items[id])
	}
	return n
}

func (c *LRUCache[T]) remove(elem *list.Element) {
	id := elem.Value.(*cacheItem[T]).id
	delete(c.items, id)
	if keys := c.scopes[id.scope]; keys != nil {
		delete(keys, id)
		if len(keys) == 0 {
			delete(c.scopes, id.scope)
		}
	}
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns how many it removed.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	c.stats.Expired += uint64(removed)
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
