package lrucache

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// MaxCapacity is the largest capacity a cache can be created with.
//
// Entries live in an arena addressed by int32 indices.
const MaxCapacity = math.MaxInt32

// preallocLimit caps how many slots are reserved up front. The arena grows
// on demand past this point, one slot per insertion.
const preallocLimit = 1 << 12

// ErrInvalidCapacity is returned when a cache is configured with a capacity
// or shard count it cannot represent.
var ErrInvalidCapacity = errors.New("lrucache: invalid capacity")

// Config configures a [Cache].
type Config[K comparable, V any] struct {
	// Capacity is the maximum number of entries the cache holds.
	//
	// A zero capacity is valid: every write is evicted immediately and
	// nothing is ever retrievable.
	Capacity int

	// OnEvict, if set, is called for every entry dropped to make room for a
	// new one. It runs after the cache lock has been released, so it may
	// call back into the cache.
	OnEvict func(key K, value V)

	// Clone, if set, is applied to values on the way in and on the way out.
	// Use it for reference-typed values ([]byte, maps, pointers) that callers
	// must not share with the cache.
	Clone func(V) V

	// Logger overrides the package logger (see [SetLogger]) for this cache.
	Logger *slog.Logger
}

func (cfg *Config[K, V]) validate() error {
	if cfg.Capacity < 0 {
		return fmt.Errorf("%w: must not be negative; got %d", ErrInvalidCapacity, cfg.Capacity)
	}
	if cfg.Capacity > MaxCapacity {
		return fmt.Errorf("%w: must not exceed %d; got %d", ErrInvalidCapacity, MaxCapacity, cfg.Capacity)
	}

	return nil
}
