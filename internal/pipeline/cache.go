package pipeline

import (
	"sync"

	ristretto "github.com/dgraph-io/ristretto/v2"
)

// Cache stores resolved results by key.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, val V)
	Len() int
}

// MapCache is an unbounded cache. Entries are never evicted, so callers must keep
// the number of distinct keys bounded.
type MapCache[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

func NewMapCache[V any]() *MapCache[V] {
	return &MapCache[V]{m: make(map[string]V)}
}

func (c *MapCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *MapCache[V]) Set(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = val
}

func (c *MapCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// RistrettoCache is a bounded cache holding roughly maxEntries results, admission
// and eviction decided by ristretto's TinyLFU policy.
type RistrettoCache[V any] struct {
	cache *ristretto.Cache[string, V]
}

func NewRistrettoCache[V any](maxEntries int64) (*RistrettoCache[V], error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoCache[V]{cache: cache}, nil
}

func (c *RistrettoCache[V]) Get(key string) (V, bool) {
	return c.cache.Get(key)
}

// Set stores val with cost 1 and waits for the write buffer so the value is
// visible to the next Get.
func (c *RistrettoCache[V]) Set(key string, val V) {
	c.cache.Set(key, val, 1)
	c.cache.Wait()
}

func (c *RistrettoCache[V]) Len() int {
	m := c.cache.Metrics
	if m == nil {
		return 0
	}
	return int(m.KeysAdded() - m.KeysEvicted())
}

func (c *RistrettoCache[V]) Close() {
	c.cache.Close()
}
