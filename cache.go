package lrucache

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// Cache is a bounded thread-safe in-memory cache with LRU eviction.
//
// A single lock guards both the key table and the recency list, so every
// method is atomic with respect to every other.
type Cache[K comparable, V any] struct {
	mu rwMutex

	table    map[K]int32
	list     recencyList[K, V]
	capacity int

	onEvict func(K, V)
	clone   func(V) V
	logger  *slog.Logger

	stats counters
}

// New returns a new cache holding at most capacity entries.
//
// It returns [ErrInvalidCapacity] for a negative capacity or one above
// [MaxCapacity].
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	return NewWithConfig(Config[K, V]{Capacity: capacity})
}

// MustNew is like [New] but panics if capacity is invalid.
func MustNew[K comparable, V any](capacity int) *Cache[K, V] {
	c, err := New[K, V](capacity)
	if err != nil {
		panic(err)
	}

	return c
}

// NewWithConfig returns a new cache configured by cfg.
func NewWithConfig[K comparable, V any](cfg Config[K, V]) (*Cache[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	prealloc := min(cfg.Capacity, preallocLimit)
	c := &Cache[K, V]{
		table:    make(map[K]int32, prealloc),
		capacity: cfg.Capacity,
		onEvict:  cfg.OnEvict,
		clone:    cfg.Clone,
		logger:   cfg.Logger,
	}
	c.list.init(prealloc)

	c.log().LogAttrs(context.Background(), slog.LevelInfo, "lrucache: created",
		slog.Int("capacity", cfg.Capacity))

	return c, nil
}

// Set stores (k, v) in the cache and marks k as the most recently used key.
//
// If k is new and the cache is full, the least recently used entry is
// evicted first.
func (c *Cache[K, V]) Set(k K, v V) {
	c.stats.setCalls.Add(1)
	v = c.cloneValue(v)

	c.mu.Lock()
	if i, ok := c.table[k]; ok {
		c.list.nodes[i].value = v
		c.list.touch(i)
		c.mu.Unlock()

		return
	}
	ek, ev, evicted := c.insertLocked(k, v)
	c.mu.Unlock()

	if evicted {
		c.evicted(ek, ev)
	}
}

// Get returns the value for the given key and marks it as the most recently
// used one.
//
// Returns the zero value and false if the key is not found. A miss leaves the
// cache untouched.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.stats.getCalls.Add(1)

	c.mu.Lock()
	i, ok := c.table[k]
	if !ok {
		c.mu.Unlock()
		c.stats.misses.Add(1)

		var zero V
		return zero, false
	}
	c.list.touch(i)
	v := c.list.nodes[i].value
	c.mu.Unlock()

	return c.cloneValue(v), true
}

// Peek returns the value for the given key without changing its recency.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	c.mu.RLock()
	i, ok := c.table[k]
	if !ok {
		c.mu.RUnlock()

		var zero V
		return zero, false
	}
	v := c.list.nodes[i].value
	c.mu.RUnlock()

	return c.cloneValue(v), true
}

// Contains reports whether the key is present. Unlike [Cache.Get] it does
// not change the key's recency.
func (c *Cache[K, V]) Contains(k K) bool {
	c.mu.RLock()
	_, ok := c.table[k]
	c.mu.RUnlock()

	return ok
}

// Remove deletes the entry for the given key and returns its value.
//
// The removed result reports whether the key was present.
func (c *Cache[K, V]) Remove(k K) (v V, removed bool) {
	c.stats.deletes.Add(1)

	c.mu.Lock()
	i, ok := c.table[k]
	if ok {
		delete(c.table, k)
		_, v = c.list.remove(i)
	}
	c.mu.Unlock()

	return v, ok
}

// GetOrSet returns the existing value for the key if present, marking it as
// the most recently used. Otherwise it stores and returns the given value.
//
// The loaded result is true if the value was loaded, false if stored.
func (c *Cache[K, V]) GetOrSet(k K, v V) (actual V, loaded bool) {
	stored := c.cloneValue(v)

	c.mu.Lock()
	if i, ok := c.table[k]; ok {
		c.stats.getCalls.Add(1)
		c.list.touch(i)
		actual = c.list.nodes[i].value
		c.mu.Unlock()

		return c.cloneValue(actual), true
	}
	c.stats.setCalls.Add(1)
	ek, ev, evicted := c.insertLocked(k, stored)
	c.mu.Unlock()

	if evicted {
		c.evicted(ek, ev)
	}

	return v, false
}

// SetIfAbsent stores the value for a key only if the key is not already
// present. An existing key keeps both its value and its recency.
//
// Returns true if the value was stored, false if the key already existed.
func (c *Cache[K, V]) SetIfAbsent(k K, v V) (stored bool) {
	v = c.cloneValue(v)

	c.mu.Lock()
	if _, ok := c.table[k]; ok {
		c.mu.Unlock()

		return false
	}
	c.stats.setCalls.Add(1)
	ek, ev, evicted := c.insertLocked(k, v)
	c.mu.Unlock()

	if evicted {
		c.evicted(ek, ev)
	}

	return true
}

// Update assigns to the key the way a subscript does: a nil v removes the
// key, otherwise *v is stored as by [Cache.Set].
func (c *Cache[K, V]) Update(k K, v *V) {
	if v == nil {
		c.Remove(k)

		return
	}
	c.Set(k, *v)
}

// Oldest returns the least recently used entry, the next one to be evicted.
// It does not change the entry's recency.
func (c *Cache[K, V]) Oldest() (k K, v V, ok bool) {
	c.mu.RLock()
	if t := c.list.tail; t != nilIndex {
		n := &c.list.nodes[t]
		k, v, ok = n.key, n.value, true
	}
	c.mu.RUnlock()

	if ok {
		v = c.cloneValue(v)
	}

	return k, v, ok
}

// Clear removes all the entries from the cache and restarts recency
// tracking. Stats are kept; see [Cache.ResetStats].
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	n := len(c.table)
	clear(c.table)
	c.list.reset()
	c.mu.Unlock()

	if l := c.log(); l.Enabled(context.Background(), slog.LevelDebug) {
		l.LogAttrs(context.Background(), slog.LevelDebug, "lrucache: cleared",
			slog.Int("entries", n))
	}
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	n := len(c.table)
	c.mu.RUnlock()

	return n
}

// Cap returns the maximum number of entries the cache holds.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// All returns an iterator over all key-value pairs in the cache, from the
// most to the least recently used.
//
// The pairs are a snapshot taken when iteration starts. The lock is not held
// while yielding, so the loop body may call other cache methods.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range c.snapshot() {
			if !yield(e.key, c.cloneValue(e.value)) {
				return
			}
		}
	}
}

// Keys returns an iterator over all keys in the cache, from the most to the
// least recently used. See [Cache.All] for the snapshot semantics.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, k := range c.snapshotKeys() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator over all values in the cache, from the most to
// the least recently used. See [Cache.All] for the snapshot semantics.
func (c *Cache[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, e := range c.snapshot() {
			if !yield(c.cloneValue(e.value)) {
				return
			}
		}
	}
}

// String implements [fmt.Stringer].
func (c *Cache[K, V]) String() string {
	return fmt.Sprintf("lrucache.Cache{len: %d, cap: %d}", c.Len(), c.capacity)
}

// insertLocked links a key that is not in the table, evicting the least
// recently used entry first when the cache is full. The caller holds c.mu.
func (c *Cache[K, V]) insertLocked(k K, v V) (ek K, ev V, evicted bool) {
	if c.capacity == 0 {
		return k, v, true
	}

	if c.list.len >= c.capacity {
		ek, ev = c.list.remove(c.list.tail)
		delete(c.table, ek)
		evicted = true
	}
	c.table[k] = c.list.pushFront(k, v)

	return ek, ev, evicted
}

// evicted records an eviction. It must be called without c.mu held.
func (c *Cache[K, V]) evicted(k K, v V) {
	c.stats.evictions.Add(1)

	if l := c.log(); l.Enabled(context.Background(), slog.LevelDebug) {
		l.LogAttrs(context.Background(), slog.LevelDebug, "lrucache: evicted",
			slog.Any("key", k), slog.Int("capacity", c.capacity))
	}

	if c.onEvict != nil {
		c.onEvict(k, v)
	}
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

func (c *Cache[K, V]) snapshot() []entry[K, V] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entry[K, V], 0, c.list.len)
	for i := c.list.head; i != nilIndex; i = c.list.nodes[i].next {
		n := &c.list.nodes[i]
		out = append(out, entry[K, V]{key: n.key, value: n.value})
	}

	return out
}

func (c *Cache[K, V]) snapshotKeys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]K, 0, c.list.len)
	for i := c.list.head; i != nilIndex; i = c.list.nodes[i].next {
		out = append(out, c.list.nodes[i].key)
	}

	return out
}

func (c *Cache[K, V]) cloneValue(v V) V {
	if c.clone == nil {
		return v
	}

	return c.clone(v)
}

func (c *Cache[K, V]) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}

	return Logger()
}
