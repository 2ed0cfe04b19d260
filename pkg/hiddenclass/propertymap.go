package hiddenclass

import "shapeline/pkg/symbol"

// PropertyPos is an opaque handle into a PropertyMap, returned by Find and
// Insert and consumed by Get/Remove. It stays valid across further Find
// calls but is invalidated by Remove of the same position (spec.md §3.1,
// "DictPropertyMap"). It is comparable and zero-valued means "not found."
type PropertyPos struct {
	index int
	valid bool
}

// Found reports whether the position refers to a live entry.
func (p PropertyPos) Found() bool { return p.valid }

type mapEntry struct {
	sym       symbol.ID
	desc      NamedPropertyDescriptor
	tombstone bool
}

// PropertyMap is an insertion-ordered, open-addressed table from symbol.ID
// to NamedPropertyDescriptor. Non-dictionary hidden classes build one lazily
// and never remove from it (slots are not reclaimed); dictionary-mode
// classes use Remove, which frees the entry's slot index for reuse by a
// later Insert. This mirrors Hermes's DictPropertyMap, grounded in this
// codebase on paserati's pkg/vm/object.go Shape.fields append-only list for
// the non-dictionary case, generalized here into a real hash table so
// dictionary-mode lookup stays O(1) at the property counts (kDictionaryThreshold
// and above) where a linear scan would be too slow.
type PropertyMap struct {
	entries   []mapEntry
	buckets   []int32 // index into entries, or bucketEmpty/bucketTombstone
	count     int     // live (non-tombstone) entries
	nextSlot  uint32
	freeSlots []uint32
}

const (
	bucketEmpty     int32 = -1
	bucketTombstone int32 = -2
)

// NewPropertyMap creates an empty map with room for capacity properties
// before its first rehash.
func NewPropertyMap(capacity int) *PropertyMap {
	size := 8
	for size < capacity*2 {
		size *= 2
	}
	pm := &PropertyMap{
		entries: make([]mapEntry, 0, capacity),
		buckets: make([]int32, size),
	}
	for i := range pm.buckets {
		pm.buckets[i] = bucketEmpty
	}
	return pm
}

// Size returns the number of live properties.
func (pm *PropertyMap) Size() int { return pm.count }

func (pm *PropertyMap) bucketFor(sym symbol.ID) int {
	return int(uint32(sym)) & (len(pm.buckets) - 1)
}

// Find looks up name, returning its position and descriptor if present.
func (pm *PropertyMap) Find(sym symbol.ID) (PropertyPos, NamedPropertyDescriptor, bool) {
	b := pm.bucketFor(sym)
	for i := 0; i < len(pm.buckets); i++ {
		slot := pm.buckets[(b+i)%len(pm.buckets)]
		if slot == bucketEmpty {
			return PropertyPos{}, NamedPropertyDescriptor{}, false
		}
		if slot == bucketTombstone {
			continue
		}
		e := &pm.entries[slot]
		if !e.tombstone && e.sym == sym {
			return PropertyPos{index: int(slot), valid: true}, e.desc, true
		}
	}
	return PropertyPos{}, NamedPropertyDescriptor{}, false
}

// Get dereferences a previously-returned position.
func (pm *PropertyMap) Get(pos PropertyPos) (symbol.ID, NamedPropertyDescriptor) {
	e := &pm.entries[pos.index]
	return e.sym, e.desc
}

func (pm *PropertyMap) allocSlot() uint32 {
	if n := len(pm.freeSlots); n > 0 {
		slot := pm.freeSlots[n-1]
		pm.freeSlots = pm.freeSlots[:n-1]
		return slot
	}
	slot := pm.nextSlot
	pm.nextSlot++
	return slot
}

func (pm *PropertyMap) insertBucket(sym symbol.ID, entryIndex int32) {
	b := pm.bucketFor(sym)
	for i := 0; i < len(pm.buckets); i++ {
		idx := (b + i) % len(pm.buckets)
		if pm.buckets[idx] == bucketEmpty || pm.buckets[idx] == bucketTombstone {
			pm.buckets[idx] = entryIndex
			return
		}
	}
	panic("hiddenclass: property map bucket table full")
}

func (pm *PropertyMap) maybeGrow() {
	if pm.count*10 < len(pm.buckets)*7 {
		return
	}
	newSize := len(pm.buckets) * 2
	newBuckets := make([]int32, newSize)
	for i := range newBuckets {
		newBuckets[i] = bucketEmpty
	}
	pm.buckets = newBuckets
	for idx := range pm.entries {
		if pm.entries[idx].tombstone {
			continue
		}
		pm.insertBucket(pm.entries[idx].sym, int32(idx))
	}
}

// Insert adds a new property, allocating its slot index (reusing a freed
// slot if one is available) and returning the resulting position.
func (pm *PropertyMap) Insert(sym symbol.ID, flags PropertyFlags) (PropertyPos, NamedPropertyDescriptor) {
	pm.maybeGrow()
	slot := pm.allocSlot()
	desc := NamedPropertyDescriptor{SlotIndex: slot, Flags: flags}
	entryIndex := int32(len(pm.entries))
	pm.entries = append(pm.entries, mapEntry{sym: sym, desc: desc})
	pm.insertBucket(sym, entryIndex)
	pm.count++
	return PropertyPos{index: int(entryIndex), valid: true}, desc
}

// SetDescriptor overwrites the descriptor stored at pos, preserving its slot
// index unless the caller explicitly changes it. Used by UpdateProperty's
// dictionary-mode path.
func (pm *PropertyMap) SetDescriptor(pos PropertyPos, desc NamedPropertyDescriptor) {
	pm.entries[pos.index].desc = desc
}

// Remove deletes the property at pos and frees its slot index for reuse.
// Only meaningful for dictionary-mode classes; spec.md §4.1 and §9 note
// that non-dictionary classes never reclaim slots.
func (pm *PropertyMap) Remove(pos PropertyPos) {
	e := &pm.entries[pos.index]
	if e.tombstone {
		return
	}
	sym := e.sym
	e.tombstone = true
	pm.freeSlots = append(pm.freeSlots, e.desc.SlotIndex)
	pm.count--

	b := pm.bucketFor(sym)
	for i := 0; i < len(pm.buckets); i++ {
		idx := (b + i) % len(pm.buckets)
		if pm.buckets[idx] == int32(pos.index) {
			pm.buckets[idx] = bucketTombstone
			return
		}
		if pm.buckets[idx] == bucketEmpty {
			return
		}
	}
}

// ForEach visits every live property in insertion order.
func (pm *PropertyMap) ForEach(fn func(symbol.ID, NamedPropertyDescriptor)) {
	for i := range pm.entries {
		if pm.entries[i].tombstone {
			continue
		}
		fn(pm.entries[i].sym, pm.entries[i].desc)
	}
}

// ForEachWhile visits live properties in insertion order until fn returns
// false, mirroring HiddenClass::forEachPropertyWhile.
func (pm *PropertyMap) ForEachWhile(fn func(symbol.ID, NamedPropertyDescriptor) bool) {
	for i := range pm.entries {
		if pm.entries[i].tombstone {
			continue
		}
		if !fn(pm.entries[i].sym, pm.entries[i].desc) {
			return
		}
	}
}

// MutateAll rewrites every live entry's descriptor in place via fn. Used by
// operations that touch every property at once (MakeAllNonConfigurable,
// MakeAllReadOnly, UpdatePropertyFlagsWithoutTransitions) so they pay for a
// single pass instead of one Find/SetDescriptor per property.
func (pm *PropertyMap) MutateAll(fn func(NamedPropertyDescriptor) NamedPropertyDescriptor) {
	for i := range pm.entries {
		if pm.entries[i].tombstone {
			continue
		}
		pm.entries[i].desc = fn(pm.entries[i].desc)
	}
}

// Clone returns a deep copy, used wherever a class needs its own map
// without taking another class's: materializing a child from a parent that
// keeps its map, the class UpdatePropertyFlagsWithoutTransitions mints, and
// the new class ConvertToDictionary creates, so that a dictionary never
// shares its property map.
func (pm *PropertyMap) Clone() *PropertyMap {
	out := &PropertyMap{
		entries:   append([]mapEntry(nil), pm.entries...),
		buckets:   append([]int32(nil), pm.buckets...),
		count:     pm.count,
		nextSlot:  pm.nextSlot,
		freeSlots: append([]uint32(nil), pm.freeSlots...),
	}
	return out
}
