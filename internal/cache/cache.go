// Package cache provides small, fixed-capacity LRU caches for rendered HTML
// fragments and the process-wide instances the server shares between
// requests.
//
// The caches are deliberately tiny (tens to hundreds of entries), so lookups
// are a linear scan under a mutex. Callers must never hold a cache across
// I/O: look up, release, do the work, then insert.
package cache

import (
	"sync"
	"sync/atomic"
)

const (
	// PostCapacity bounds the cache of rendered post bodies, keyed by slug.
	PostCapacity = 32
	// SnippetCapacity bounds the cache of converted ANSI snippets, keyed by
	// source name.
	SnippetCapacity = 256
)

type entry struct {
	key   string
	value string
}

// LRU is a bounded least-recently-used string cache safe for concurrent use.
type LRU struct {
	name     string
	capacity int

	mutex   sync.Mutex
	entries []entry // most recently used first

	// Statistics tracking (atomic for thread safety)
	hits      int64
	misses    int64
	inserts   int64
	evictions int64
}

// Stats is a point-in-time snapshot of an LRU.
type Stats struct {
	Name      string
	Len       int
	Capacity  int
	Hits      int64
	Misses    int64
	Inserts   int64
	Evictions int64
}

// New creates an LRU holding at most capacity entries. A capacity below one
// is raised to one.
func New(name string, capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		name:     name,
		capacity: capacity,
		entries:  make([]entry, 0, capacity),
	}
}

// Find returns the value stored under key and marks it most recently used.
func (c *LRU) Find(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i, e := range c.entries {
		if e.key != key {
			continue
		}
		// Move to front (mark as recently used)
		copy(c.entries[1:i+1], c.entries[:i])
		c.entries[0] = e
		atomic.AddInt64(&c.hits, 1)
		return e.value, true
	}
	atomic.AddInt64(&c.misses, 1)
	return "", false
}

// Insert stores value under key as the most recently used entry, evicting
// the least recently used one when full. It does not check for an existing
// entry: two racing inserts of the same key leave a harmless duplicate that
// ages out like any other entry.
func (c *LRU) Insert(key, value string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.entries) < c.capacity {
		c.entries = append(c.entries, entry{})
	} else {
		atomic.AddInt64(&c.evictions, 1)
	}
	copy(c.entries[1:], c.entries[:len(c.entries)-1])
	c.entries[0] = entry{key: key, value: value}
	atomic.AddInt64(&c.inserts, 1)
}

// Len returns the number of stored entries.
func (c *LRU) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *LRU) Capacity() int {
	return c.capacity
}

// Name returns the label the cache was created with.
func (c *LRU) Name() string {
	return c.name
}

// Stats returns a snapshot of the cache counters.
func (c *LRU) Stats() Stats {
	return Stats{
		Name:      c.name,
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Inserts:   atomic.LoadInt64(&c.inserts),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total)
}
