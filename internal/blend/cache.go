package blend

import (
	"slices"
	"sync/atomic"

	"golang.org/x/sync/syncmap"
)

type columnKey struct{ x, z int }

// maxCacheColumns bounds a cache; it is dropped wholesale when full.
const maxCacheColumns = 1 << 16

// Cache memoizes samples per integer column for one worker. It is not safe
// for concurrent use; give every worker its own.
type Cache struct {
	s       *Sampler
	columns map[columnKey]Sample
	limit   int
}

// NewCache returns an empty per-worker cache over s.
func (s *Sampler) NewCache() *Cache {
	return &Cache{s: s, columns: make(map[columnKey]Sample), limit: maxCacheColumns}
}

// Sampler returns the underlying sampler.
func (c *Cache) Sampler() *Sampler { return c.s }

// At returns the sample for column (x, z), computing it on first use.
// The Biomes slice is shared with the cache and must not be modified.
func (c *Cache) At(x, z int) Sample {
	k := columnKey{x, z}
	if v, ok := c.columns[k]; ok {
		return v
	}
	if len(c.columns) >= c.limit {
		clear(c.columns)
	}
	v := c.s.At(float64(x), float64(z))
	c.columns[k] = v
	return v
}

// Len returns the number of cached columns.
func (c *Cache) Len() int { return len(c.columns) }

// Shared is a concurrent column cache for readers outside chunk generation,
// such as map rendering and diagnostics.
type Shared struct {
	s       *Sampler
	columns syncmap.Map
	size    atomic.Int64
	limit   int64
}

// NewShared returns an empty shared cache over s.
func (s *Sampler) NewShared() *Shared {
	return &Shared{s: s, limit: maxCacheColumns}
}

// At returns the sample for column (x, z) with a Biomes slice the caller
// owns. Concurrent misses on one column may compute it twice; both results
// are identical.
func (sh *Shared) At(x, z int) Sample {
	k := columnKey{x, z}
	v, ok := sh.columns.Load(k)
	if !ok {
		var loaded bool
		v, loaded = sh.columns.LoadOrStore(k, sh.s.At(float64(x), float64(z)))
		if !loaded && sh.size.Add(1) > sh.limit {
			sh.columns.Clear()
			sh.size.Store(0)
		}
	}
	sample := v.(Sample)
	sample.Biomes = slices.Clone(sample.Biomes)
	return sample
}

// Len returns the approximate number of cached columns.
func (sh *Shared) Len() int { return int(sh.size.Load()) }
