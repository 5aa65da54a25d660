package cache

import (
	"sync"
	"time"
)

// LRU is a bounded in-process map with least-recently-used eviction.
// On overflow it evicts the single entry with the oldest last-access time.
// Safe for concurrent use; races on identical keys are last-writer-wins.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*lruEntry[V]
	clock    func() time.Time // injectable for tests
	seq      int64            // tie-break when clock resolution collapses
}

type lruEntry[V any] struct {
	value      V
	lastAccess time.Time
	seq        int64
}

// NewLRU creates an LRU with the given capacity (minimum 1).
func NewLRU[V any](capacity int) *LRU[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[V]{
		capacity: capacity,
		entries:  make(map[string]*lruEntry[V], capacity),
		clock:    time.Now,
	}
}

// Get returns the value for key and refreshes its access time.
func (l *LRU[V]) Get(key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	l.seq++
	entry.lastAccess = l.clock()
	entry.seq = l.seq
	return entry.value, true
}

// Set stores a value, evicting the least-recently-used entry if full.
func (l *LRU[V]) Set(key string, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	if entry, ok := l.entries[key]; ok {
		entry.value = value
		entry.lastAccess = l.clock()
		entry.seq = l.seq
		return
	}

	if len(l.entries) >= l.capacity {
		l.evictOldestLocked()
	}

	l.entries[key] = &lruEntry[V]{
		value:      value,
		lastAccess: l.clock(),
		seq:        l.seq,
	}
}

// Len returns the number of cached entries.
func (l *LRU[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *LRU[V]) evictOldestLocked() {
	var oldestKey string
	var oldest *lruEntry[V]
	for key, entry := range l.entries {
		if oldest == nil || entry.lastAccess.Before(oldest.lastAccess) ||
			(entry.lastAccess.Equal(oldest.lastAccess) && entry.seq < oldest.seq) {
			oldestKey = key
			oldest = entry
		}
	}
	if oldest != nil {
		delete(l.entries, oldestKey)
	}
}
