package hiddenclass

import "sync/atomic"

// CacheState is the classic inline-cache state machine: a cache starts
// uninitialized, becomes monomorphic after its first Update, grows polymorphic
// as it absorbs a handful of distinct classes at the same call site, and
// finally gives up and goes megamorphic once it can no longer track every
// class it has seen. Grounded on paserati's pkg/vm/cache.go
// PropInlineCache, generalized here to key entries by *Class instead of
// *Shape.
type CacheState int

const (
	CacheUninitialized CacheState = iota
	CacheMonomorphic
	CachePolymorphic
	CacheMegamorphic
)

// polyEntries is the number of distinct classes a polymorphic cache can
// track before degrading to megamorphic, matching paserati's 4-entry cache.
const polyEntries = 4

type cacheEntry struct {
	class *Class
	desc  NamedPropertyDescriptor
}

// PropertyCache is a per-call-site inline cache over hidden classes. It
// takes no lock: its state and counters are atomics, but entries and size
// are plain fields, so Update must not run concurrently with another Update
// or with Lookup.
type PropertyCache struct {
	state   atomic.Int32
	entries [polyEntries]cacheEntry
	size    int

	Stats CacheStats
}

// CacheStats counts cache outcomes for diagnostics, in the spirit of
// paserati's pkg/vm/cache_prototype.go ICacheStats.
type CacheStats struct {
	Hits        atomic.Int64
	Misses      atomic.Int64
	Transitions atomic.Int64
}

// NewPropertyCache returns an empty, uninitialized cache.
func NewPropertyCache() *PropertyCache {
	return &PropertyCache{}
}

func (c *PropertyCache) State() CacheState {
	return CacheState(c.state.Load())
}

// Lookup returns the cached descriptor for class, if any entry matches.
func (c *PropertyCache) Lookup(class *Class) (NamedPropertyDescriptor, bool) {
	if CacheState(c.state.Load()) == CacheUninitialized {
		c.Stats.Misses.Add(1)
		return NamedPropertyDescriptor{}, false
	}
	for i := 0; i < c.size; i++ {
		if c.entries[i].class == class {
			c.Stats.Hits.Add(1)
			return c.entries[i].desc, true
		}
	}
	c.Stats.Misses.Add(1)
	return NamedPropertyDescriptor{}, false
}

// Update records that class resolves to desc, growing the cache from
// uninitialized to monomorphic to polymorphic, or degrading it to
// megamorphic once it has seen more distinct classes than it can track.
func (c *PropertyCache) Update(class *Class, desc NamedPropertyDescriptor) {
	switch CacheState(c.state.Load()) {
	case CacheUninitialized:
		c.entries[0] = cacheEntry{class: class, desc: desc}
		c.size = 1
		c.state.Store(int32(CacheMonomorphic))
	case CacheMonomorphic, CachePolymorphic:
		for i := 0; i < c.size; i++ {
			if c.entries[i].class == class {
				c.entries[i].desc = desc
				return
			}
		}
		if c.size < polyEntries {
			c.entries[c.size] = cacheEntry{class: class, desc: desc}
			c.size++
			c.state.Store(int32(CachePolymorphic))
			c.Stats.Transitions.Add(1)
			return
		}
		c.state.Store(int32(CacheMegamorphic))
		c.Stats.Transitions.Add(1)
	case CacheMegamorphic:
		// Once megamorphic a call site no longer tracks individual classes.
	}
}

// Reset clears the cache back to uninitialized, used when the property it
// guards has been invalidated out from under it (e.g. by a dictionary-mode
// mutation that changes a slot's meaning without minting a new class).
func (c *PropertyCache) Reset() {
	c.state.Store(int32(CacheUninitialized))
	c.size = 0
	for i := range c.entries {
		c.entries[i] = cacheEntry{}
	}
}
