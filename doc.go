// Package lrucache provides a generic, bounded, thread-safe in-memory cache
// with LRU eviction.
//
// # Architecture
//
// A [Cache] holds at most [Cache.Cap] entries. One lock guards two
// structures:
//
//   - A map[K]int32 from key to arena slot for O(1) lookups
//   - An arena of slots forming a doubly linked list by index, most recently
//     used at the head, least recently used at the tail
//
// Slots released by [Cache.Remove] or eviction are reused before the arena
// grows, and the arena never grows past the capacity.
//
// # Eviction
//
// When a new key is written to a full cache, the least recently used entry is
// evicted first. [Cache.Set] and a [Cache.Get] hit mark a key as most
// recently used; [Cache.Contains], [Cache.Peek] and [Cache.Oldest] do not.
// Entries never touched since insertion are evicted in insertion order.
//
// A cache with zero capacity accepts writes and evicts them immediately.
//
// There is no time-based expiration and no persistence.
//
// # Sharding
//
// [Sharded] splits the capacity over independent [Cache] shards selected by
// key hash. It scales better under contention but only keeps LRU order
// within each shard.
//
// # Thread Safety
//
// All [Cache] and [Sharded] methods are safe for concurrent use by multiple
// goroutines. [Config.OnEvict] and [Config.Clone] are never called with the
// lock held. Iterators work on snapshots and do not block other operations.
//
// Build with -tags deadlock to run the cache on go-deadlock mutexes.
package lrucache
