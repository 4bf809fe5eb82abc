package lrucache

import (
	"fmt"
	"hash/maphash"
	"iter"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is the shard count used by [NewSharded] when
// [ShardedConfig.Shards] is zero and the capacity allows it.
const DefaultShards = 16

// Hasher computes a 64-bit hash of a key for shard selection.
type Hasher[K any] func(K) uint64

// hashSeed is the seed used by [ComparableHasher].
var hashSeed = maphash.MakeSeed()

// ComparableHasher hashes any comparable key with [maphash.Comparable].
// It is the default [Hasher].
func ComparableHasher[K comparable](k K) uint64 {
	return maphash.Comparable(hashSeed, k)
}

// StringHasher hashes a string key with xxhash.
func StringHasher(s string) uint64 {
	return xxhash.Sum64String(s)
}

// ShardedConfig configures a [Sharded] cache.
type ShardedConfig[K comparable, V any] struct {
	Config[K, V]

	// Shards is the number of shards. It must be a power of two and must not
	// exceed Capacity unless Capacity is zero. Zero picks [DefaultShards],
	// lowered to fit small capacities.
	Shards int

	// Hasher selects the shard of a key. Nil means [ComparableHasher].
	Hasher Hasher[K]
}

// Sharded is a thread-safe cache split into independent LRU shards.
//
// Each shard is a [Cache] with its own lock, so Sharded trades strict global
// LRU order for lower contention: an entry is evicted when it is the least
// recently used one of its shard. The shard capacities add up exactly to the
// configured capacity.
type Sharded[K comparable, V any] struct {
	shards   []*Cache[K, V]
	mask     uint64
	hasher   Hasher[K]
	capacity int
}

// NewSharded returns a new sharded cache configured by cfg.
func NewSharded[K comparable, V any](cfg ShardedConfig[K, V]) (*Sharded[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n, err := shardCount(cfg.Shards, cfg.Capacity)
	if err != nil {
		return nil, err
	}

	s := &Sharded[K, V]{
		shards:   make([]*Cache[K, V], n),
		mask:     uint64(n - 1),
		hasher:   cfg.Hasher,
		capacity: cfg.Capacity,
	}
	if s.hasher == nil {
		s.hasher = ComparableHasher[K]
	}

	base, extra := cfg.Capacity/n, cfg.Capacity%n
	for i := range s.shards {
		shardCfg := cfg.Config
		shardCfg.Capacity = base
		if i < extra {
			shardCfg.Capacity++
		}
		if s.shards[i], err = NewWithConfig(shardCfg); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustNewSharded is like [NewSharded] but panics on an invalid config.
func MustNewSharded[K comparable, V any](cfg ShardedConfig[K, V]) *Sharded[K, V] {
	s, err := NewSharded(cfg)
	if err != nil {
		panic(err)
	}

	return s
}

func shardCount(shards, capacity int) (int, error) {
	if shards == 0 {
		shards = DefaultShards
		if capacity > 0 && capacity < shards {
			// Largest power of two not above capacity.
			shards = 1 << (bits.Len(uint(capacity)) - 1)
		}

		return shards, nil
	}

	if shards < 0 || shards&(shards-1) != 0 {
		return 0, fmt.Errorf("%w: shard count must be a positive power of two; got %d",
			ErrInvalidCapacity, shards)
	}
	if capacity > 0 && shards > capacity {
		return 0, fmt.Errorf("%w: shard count %d exceeds capacity %d",
			ErrInvalidCapacity, shards, capacity)
	}

	return shards, nil
}

func (s *Sharded[K, V]) shard(k K) *Cache[K, V] {
	return s.shards[s.hasher(k)&s.mask]
}

// Set stores (k, v) in the shard of k. See [Cache.Set].
func (s *Sharded[K, V]) Set(k K, v V) {
	s.shard(k).Set(k, v)
}

// Get returns the value for the given key. See [Cache.Get].
func (s *Sharded[K, V]) Get(k K) (V, bool) {
	return s.shard(k).Get(k)
}

// Peek returns the value for the given key without changing its recency.
func (s *Sharded[K, V]) Peek(k K) (V, bool) {
	return s.shard(k).Peek(k)
}

// Contains reports whether the key is present, without changing its recency.
func (s *Sharded[K, V]) Contains(k K) bool {
	return s.shard(k).Contains(k)
}

// Remove deletes the entry for the given key and returns its value.
func (s *Sharded[K, V]) Remove(k K) (V, bool) {
	return s.shard(k).Remove(k)
}

// GetOrSet returns the existing value for the key or stores the given one.
// See [Cache.GetOrSet].
func (s *Sharded[K, V]) GetOrSet(k K, v V) (V, bool) {
	return s.shard(k).GetOrSet(k, v)
}

// SetIfAbsent stores the value only if the key is not present.
func (s *Sharded[K, V]) SetIfAbsent(k K, v V) bool {
	return s.shard(k).SetIfAbsent(k, v)
}

// Update removes the key if v is nil and stores *v otherwise.
func (s *Sharded[K, V]) Update(k K, v *V) {
	s.shard(k).Update(k, v)
}

// Clear removes all the entries from every shard.
//
// Shards are cleared one after another; a concurrent writer may land an
// entry in a shard that was already cleared.
func (s *Sharded[K, V]) Clear() {
	for _, c := range s.shards {
		c.Clear()
	}
}

// Len returns the number of entries across all shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, c := range s.shards {
		n += c.Len()
	}

	return n
}

// Cap returns the total capacity across all shards.
func (s *Sharded[K, V]) Cap() int {
	return s.capacity
}

// Shards returns the number of shards.
func (s *Sharded[K, V]) Shards() int {
	return len(s.shards)
}

// All returns an iterator over all key-value pairs, shard by shard. Each
// shard is snapshotted when iteration reaches it.
func (s *Sharded[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, c := range s.shards {
			for k, v := range c.All() {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Keys returns an iterator over all keys, shard by shard.
func (s *Sharded[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, c := range s.shards {
			for k := range c.Keys() {
				if !yield(k) {
					return
				}
			}
		}
	}
}

// Values returns an iterator over all values, shard by shard.
func (s *Sharded[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, c := range s.shards {
			for v := range c.Values() {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// UpdateStats adds the stats of every shard to st.
func (s *Sharded[K, V]) UpdateStats(st *Stats) {
	for _, c := range s.shards {
		c.UpdateStats(st)
	}
}

// ResetStats zeroes the counters of every shard.
func (s *Sharded[K, V]) ResetStats() {
	for _, c := range s.shards {
		c.ResetStats()
	}
}
