package benchmarks_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	vmfastcache "github.com/VictoriaMetrics/fastcache"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maypok86/otter/v2"
	"go.dw1.io/lrucache"
)

var sizes = []int{1, 16, 128, 1024, 8192}

// Lazily generated keys and values per size so CI doesn't preallocate everything at once.
type testData struct {
	keys   []string
	values [][]byte
}

type dataEntry struct {
	once sync.Once
	data *testData
}

var (
	dataMu     sync.Mutex
	dataBySize = make(map[int]*dataEntry)
)

func getData(size int) *testData {
	dataMu.Lock()
	entry, ok := dataBySize[size]
	if !ok {
		entry = &dataEntry{}
		dataBySize[size] = entry
	}
	dataMu.Unlock()

	entry.once.Do(func() {
		maxItems := 12 * size
		d := &testData{
			keys:   make([]string, maxItems),
			values: make([][]byte, maxItems),
		}
		for i := range maxItems {
			d.keys[i] = fmt.Sprintf("key-%d-%d", size, i)
			d.values[i] = make([]byte, size)
			for j := 0; j < size; j++ {
				d.values[i][j] = byte(i) ^ byte(j)
			}
		}
		entry.data = d
	})

	return entry.data
}

// store is the common surface the compared caches are adapted to.
type store interface {
	Set(k string, v []byte)
	Get(k string) ([]byte, bool)
}

type otterStore struct{ c *otter.Cache[string, []byte] }

func (s otterStore) Set(k string, v []byte)      { s.c.Set(k, v) }
func (s otterStore) Get(k string) ([]byte, bool) { return s.c.GetIfPresent(k) }

type hashicorpStore struct{ c *lru.Cache[string, []byte] }

func (s hashicorpStore) Set(k string, v []byte)      { s.c.Add(k, v) }
func (s hashicorpStore) Get(k string) ([]byte, bool) { return s.c.Get(k) }

type vmStore struct{ c *vmfastcache.Cache }

func (s vmStore) Set(k string, v []byte) { s.c.Set([]byte(k), v) }
func (s vmStore) Get(k string) ([]byte, bool) {
	v := s.c.Get(nil, []byte(k))
	return v, v != nil
}

// constructors build a store sized for maxItems entries.
var constructors = []struct {
	name string
	new  func(maxItems int) store
}{
	{"LRUCache", func(n int) store { return lrucache.MustNew[string, []byte](n) }},
	{"LRUSharded", func(n int) store {
		return lrucache.MustNewSharded(lrucache.ShardedConfig[string, []byte]{
			Config: lrucache.Config[string, []byte]{Capacity: n},
			Hasher: lrucache.StringHasher,
		})
	}},
	{"Otter", func(n int) store {
		return otterStore{otter.Must(&otter.Options[string, []byte]{MaximumSize: n})}
	}},
	{"HashicorpLRU", func(n int) store {
		c, err := lru.New[string, []byte](n)
		if err != nil {
			panic(err)
		}
		return hashicorpStore{c}
	}},
	{"VictoriaMetricsFastcache", func(n int) store {
		// fastcache is sized in bytes; 32MB is its minimum.
		return vmStore{vmfastcache.New(32 * 1024 * 1024)}
	}},
}

func BenchmarkCaches(b *testing.B) {
	for _, ctor := range constructors {
		b.Run(ctor.name, func(b *testing.B) {
			for _, size := range sizes {
				benchmarkStore(b, ctor.new, size)
			}
		})
	}
}

func benchmarkStore(b *testing.B, newStore func(int) store, size int) {
	data := getData(size)
	maxItems := 12 * size

	// Half the key space fits, so Set evicts.
	b.Run(fmt.Sprintf("Set/%d", size), func(b *testing.B) {
		c := newStore(maxItems / 2)

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			idx := i % maxItems
			c.Set(data.keys[idx], data.values[idx])
		}
	})

	b.Run(fmt.Sprintf("Get/%d", size), func(b *testing.B) {
		c := newStore(maxItems)
		for i := range maxItems {
			c.Set(data.keys[i], data.values[i])
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			c.Get(data.keys[i%maxItems])
		}
	})

	b.Run(fmt.Sprintf("GetParallel/%d", size), func(b *testing.B) {
		c := newStore(maxItems)
		for i := range maxItems {
			c.Set(data.keys[i], data.values[i])
		}

		var counter atomic.Int64
		b.ReportAllocs()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				idx := int(counter.Add(1)) % maxItems
				c.Get(data.keys[idx])
			}
		})
	})

	b.Run(fmt.Sprintf("SetGetParallel/%d", size), func(b *testing.B) {
		c := newStore(maxItems / 2)

		var counter atomic.Int64
		b.ReportAllocs()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				idx := int(counter.Add(1)) % maxItems
				c.Set(data.keys[idx], data.values[idx])
				c.Get(data.keys[idx])
			}
		})
	})
}
