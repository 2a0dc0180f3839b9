package infra

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leopoldodonnell/edgar-mcp/metrics"
)

// Defaults for the client-wide cache. EDGAR responses worth caching are few
// and large (the bulk ticker index dominates), so the capacity is generous
// and the sweep interval coarse.
const (
	DefaultCacheCapacity = 1000
	sweepInterval        = 5 * time.Minute
)

// entry is a cached value with its expiry and last-access stamp. The stamp
// is unix nanoseconds, updated atomically on every hit.
type entry struct {
	value    any
	expires  time.Time
	accessed atomic.Int64
}

// Cache is a TTL cache with LRU eviction once capacity is exceeded. The
// EDGAR client keeps exactly one heavyweight entry in it, the ~1MB ticker
// index, but the eviction machinery keeps memory bounded if callers start
// caching per-company payloads too.
type Cache struct {
	entries  sync.Map // string -> *entry
	count    atomic.Int64
	capacity int64

	evictMu  sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCache creates a cache holding at most capacity entries. A background
// sweeper drops expired entries that no Get ever touches again.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	c := &Cache{
		capacity: int64(capacity),
		stopCh:   make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the live value for key. Expired entries are removed on access
// rather than left for the sweeper.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	now := time.Now()
	if !now.Before(e.expires) {
		if _, removed := c.entries.LoadAndDelete(key); removed {
			c.count.Add(-1)
		}
		return nil, false
	}
	e.accessed.Store(now.UnixNano())
	return e.value, true
}

// Set stores value under key for ttl, replacing any previous entry. Growing
// past capacity kicks off an eviction in the background so the caller never
// waits on it.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	now := time.Now()
	e := &entry{value: value, expires: now.Add(ttl)}
	e.accessed.Store(now.UnixNano())

	if _, replaced := c.entries.Swap(key, e); replaced {
		return
	}
	if n := c.count.Add(1); n > c.capacity {
		over := int(n - c.capacity)
		go c.evict(over + int(c.capacity/10))
	}
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	if _, ok := c.entries.LoadAndDelete(key); ok {
		c.count.Add(-1)
	}
}

// Size reports the current entry count.
func (c *Cache) Size() int64 {
	return c.count.Load()
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Cache) sweepLoop() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

// sweep drops expired entries, then evicts down to capacity in case inserts
// outran the per-Set eviction.
func (c *Cache) sweep() {
	now := time.Now()
	var dropped int64
	c.entries.Range(func(key, v any) bool {
		if now.After(v.(*entry).expires) {
			if _, removed := c.entries.LoadAndDelete(key); removed {
				dropped++
			}
		}
		return true
	})
	if dropped > 0 {
		c.count.Add(-dropped)
	}
	if n := c.count.Load(); n > c.capacity {
		c.evict(int(n-c.capacity) + int(c.capacity/10))
	}
}

// evict removes the n least recently used entries.
func (c *Cache) evict(n int) {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	type aged struct {
		key      string
		accessed int64
	}
	var all []aged
	c.entries.Range(func(key, v any) bool {
		all = append(all, aged{key.(string), v.(*entry).accessed.Load()})
		return true
	})
	slices.SortFunc(all, func(a, b aged) int {
		return cmp.Compare(a.accessed, b.accessed)
	})

	for i := 0; i < n && i < len(all); i++ {
		if _, ok := c.entries.LoadAndDelete(all[i].key); ok {
			c.count.Add(-1)
			metrics.CacheEvictions.Inc()
		}
	}
}
