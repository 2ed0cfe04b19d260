package hiddenclass

import "sync"

// forInCacheEntry is the storage behind Class's forInCache slot. Its
// contents are opaque to this package (spec.md §3.1 "forInCache opaque
// field"): the for-in enumeration cache belongs to whatever subsystem
// enumerates object keys, not to the hidden-class system itself. This
// package's only obligation is to hold the value and invalidate it when a
// dictionary-mode class mutates its own property order in place, since
// that is the one case where a class's enumeration order can change after
// publication.
type forInCacheEntry struct {
	mu    sync.Mutex
	value any
}

// ForInCache returns whatever value the enumeration subsystem last stored
// via SetForInCache, or nil if none has been stored or it was invalidated.
func (c *Class) ForInCache() any {
	if c.forInCache == nil {
		return nil
	}
	c.forInCache.mu.Lock()
	defer c.forInCache.mu.Unlock()
	return c.forInCache.value
}

// SetForInCache stores an opaque enumeration-cache value on c.
func (c *Class) SetForInCache(v any) {
	c.ensureForInCache()
	c.forInCache.mu.Lock()
	defer c.forInCache.mu.Unlock()
	c.forInCache.value = v
}

// ClearForInCache invalidates any stored enumeration-cache value.
func (c *Class) ClearForInCache() {
	if c.forInCache == nil {
		return
	}
	c.forInCache.mu.Lock()
	defer c.forInCache.mu.Unlock()
	c.forInCache.value = nil
}

func (c *Class) ensureForInCache() {
	c.forInInitMu.Lock()
	defer c.forInInitMu.Unlock()
	if c.forInCache == nil {
		c.forInCache = &forInCacheEntry{}
	}
}
