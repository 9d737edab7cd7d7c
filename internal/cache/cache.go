package cache

// Cache is a least-recently-used cache holding at most Capacity values.
// Values leave the cache through the eviction callback, whether pushed out
// by Put, dropped by Remove, or cleared.
type Cache[K, V comparable] struct {
	entries  map[K]*cacheEntry[K, V]
	order    lruList[K]
	capacity int
	onEvict  func(K, V)
	stats    Stats
}

type cacheEntry[K, V comparable] struct {
	value V
	node  *lruNode[K]
}

// New creates a cache for up to capacity values. A capacity below 1 is
// treated as 1. onEvict may be nil.
func New[K, V comparable](capacity int, onEvict func(K, V)) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		entries:  make(map[K]*cacheEntry[K, V]),
		capacity: capacity,
		onEvict:  onEvict,
	}
}

// Get returns the value for key and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.order.MoveToFront(e.node)
	return e.value, true
}

// Put stores value under key. A different previous value for key is
// evicted, and so is the least recently used value when the cache is full.
// Storing the value already held only marks it as recently used.
func (c *Cache[K, V]) Put(key K, value V) {
	if e, ok := c.entries[key]; ok {
		old := e.value
		e.value = value
		c.order.MoveToFront(e.node)
		if old != value {
			c.evicted(key, old)
		}
		return
	}
	for len(c.entries) >= c.capacity {
		oldest, ok := c.order.Oldest()
		if !ok {
			break
		}
		c.Remove(oldest)
	}
	c.entries[key] = &cacheEntry[K, V]{value: value, node: c.order.PushFront(key)}
}

// Remove evicts key. It reports whether key was present.
func (c *Cache[K, V]) Remove(key K) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.Remove(e.node)
	delete(c.entries, key)
	c.evicted(key, e.value)
	return true
}

// Clear evicts every value.
func (c *Cache[K, V]) Clear() {
	for key, e := range c.entries {
		delete(c.entries, key)
		c.evicted(key, e.value)
	}
	c.order.Clear()
}

// Len returns the number of cached values.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Capacity returns the maximum number of cached values.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats returns hit, miss and eviction counters.
func (c *Cache[K, V]) Stats() Stats {
	s := c.stats
	s.Len = len(c.entries)
	s.Capacity = c.capacity
	return s
}

func (c *Cache[K, V]) evicted(key K, value V) {
	c.stats.Evictions++
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// Stats contains cache counters.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}
