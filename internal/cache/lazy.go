package cache

import "sync/atomic"

// Lazy holds an LRU that is built on first use. Concurrent first calls may
// each build one, but only the instance that wins the compare-and-swap is
// ever returned; the losers are dropped before anything is stored in them.
type Lazy struct {
	name     string
	capacity int
	ptr      atomic.Pointer[LRU]
}

// NewLazy returns a cell that will build New(name, capacity) on demand.
func NewLazy(name string, capacity int) *Lazy {
	return &Lazy{name: name, capacity: capacity}
}

// Get returns the cell's LRU, building it if needed.
func (l *Lazy) Get() *LRU {
	if c := l.ptr.Load(); c != nil {
		return c
	}
	c := New(l.name, l.capacity)
	if l.ptr.CompareAndSwap(nil, c) {
		return c
	}
	return l.ptr.Load()
}

var (
	posts    = NewLazy("posts", PostCapacity)
	snippets = NewLazy("snippets", SnippetCapacity)
)

// Posts returns the process-wide cache of rendered post bodies.
func Posts() *LRU {
	return posts.Get()
}

// Snippets returns the process-wide cache of converted ANSI snippets.
func Snippets() *LRU {
	return snippets.Get()
}
