package lrucache

import "sync/atomic"

// Stats represents cache stats.
//
// Use [Cache.UpdateStats] or [Sharded.UpdateStats] for obtaining fresh stats.
type Stats struct {
	// GetCalls is the number of lookups, including GetOrSet hits.
	GetCalls uint64

	// SetCalls is the number of writes, including GetOrSet and SetIfAbsent
	// stores.
	SetCalls uint64

	// Misses is the number of Get calls that found nothing.
	Misses uint64

	// Hits is the number of lookups that found a value.
	Hits uint64

	// Deletes is the number of Remove calls.
	Deletes uint64

	// Evictions is the number of entries evicted due to capacity limits.
	Evictions uint64

	// EntriesCount is the current number of entries in the cache.
	EntriesCount uint64

	// MaxEntries is the maximum number of entries allowed in the cache.
	MaxEntries uint64
}

// counters are updated atomically so that reading stats never takes the
// cache lock.
type counters struct {
	getCalls  atomic.Uint64
	setCalls  atomic.Uint64
	misses    atomic.Uint64
	deletes   atomic.Uint64
	evictions atomic.Uint64
}

func (s *counters) reset() {
	s.getCalls.Store(0)
	s.setCalls.Store(0)
	s.misses.Store(0)
	s.deletes.Store(0)
	s.evictions.Store(0)
}

// UpdateStats adds cache stats to s.
//
// Call [Stats.Reset] before calling UpdateStats if s is re-used.
func (c *Cache[K, V]) UpdateStats(s *Stats) {
	// A miss bumps getCalls before misses, so load misses first.
	misses := c.stats.misses.Load()
	getCalls := c.stats.getCalls.Load()
	hits := uint64(0)
	if getCalls > misses {
		hits = getCalls - misses
	}

	s.GetCalls += getCalls
	s.SetCalls += c.stats.setCalls.Load()
	s.Misses += misses
	s.Hits += hits
	s.Deletes += c.stats.deletes.Load()
	s.Evictions += c.stats.evictions.Load()
	s.EntriesCount += uint64(c.Len())
	s.MaxEntries += uint64(c.capacity)
}

// ResetStats zeroes the cache counters. Entries are not affected.
func (c *Cache[K, V]) ResetStats() {
	c.stats.reset()
}

// Reset resets s, so it may be re-used again in [Cache.UpdateStats].
func (s *Stats) Reset() {
	*s = Stats{}
}
