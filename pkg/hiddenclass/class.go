// Package hiddenclass implements the shape-inference system spec.md
// describes: a tree of immutable Class nodes connected by a transition map,
// each node describing the set and order of named properties objects
// sharing that class carry. It is grounded in this codebase on paserati's
// pkg/vm/object.go Shape/Field/transitions design, generalized to match the
// fuller state machine (dictionary-mode conversion, flag-only transition
// families, lazy property-map materialization) that the original Hermes
// HiddenClass implements.
package hiddenclass

import (
	"sync"

	"shapeline/pkg/gc"
	"shapeline/pkg/symbol"
)

// ClassFlags is a bitset of whole-class properties, distinct from the
// per-property PropertyFlags (spec.md §3.1 "ClassFlags vs PropertyFlags").
type ClassFlags uint8

const (
	FlagDictionaryMode ClassFlags = 1 << iota
	FlagHasIndexLikeProperties
	FlagAllNonConfigurable
	FlagAllReadOnly
)

func (f ClassFlags) has(bit ClassFlags) bool { return f&bit != 0 }

func (f ClassFlags) DictionaryMode() bool         { return f.has(FlagDictionaryMode) }
func (f ClassFlags) HasIndexLikeProperties() bool { return f.has(FlagHasIndexLikeProperties) }
func (f ClassFlags) AllNonConfigurable() bool     { return f.has(FlagAllNonConfigurable) }
func (f ClassFlags) AllReadOnly() bool            { return f.has(FlagAllReadOnly) }

// DictionaryThreshold is the property count at which AddProperty converts a
// class to dictionary mode instead of creating another transition child,
// mirroring Hermes's kDictionaryThreshold (original_source/include/hermes/VM/HiddenClass.h).
const DictionaryThreshold = 64

// transitionKey identifies an edge out of a class in the transition map:
// the symbol being added (or re-flagged) and the flags it gets.
type transitionKey struct {
	sym   symbol.ID
	flags PropertyFlags
}

// Class is one node in the hidden-class tree. Non-dictionary classes are
// immutable once published into their parent's transition map: every
// mutation that changes the property set produces a new Class rather than
// editing this one in place. Dictionary-mode classes are the documented
// exception (spec.md §4.2): they are mutated in place because their whole
// purpose is to absorb churn that would otherwise explode the transition
// tree.
type Class struct {
	heap *Heap

	flags ClassFlags

	parent *Class
	family *Class

	addedSymbol symbol.ID
	addedFlags  PropertyFlags

	numProperties uint32

	propertyMapMu sync.Mutex
	propertyMap   gc.Handle[*PropertyMap] // lazily materialized except for dictionaries; zero value means absent

	transitionMu sync.Mutex
	transitions  map[transitionKey]gc.WeakRef[Class]

	forInInitMu sync.Mutex
	forInCache  *forInCacheEntry
}

// Heap owns class allocation and supplies the GC collaborator spec.md §6.1
// requires; this package calls its write barrier when a transition is
// added. No finalization hook is registered: a dead child's entry is pruned
// from its parent's transition map lazily, the next time a lookup finds its
// weak reference cleared (spec.md §5, §9 "weak children").
type Heap struct {
	Allocator gc.Allocator
}

// NewHeap creates a Heap backed by alloc. A nil alloc uses gc.DefaultAllocator.
func NewHeap(alloc gc.Allocator) *Heap {
	if alloc == nil {
		alloc = gc.DefaultAllocator{}
	}
	return &Heap{Allocator: alloc}
}

// CreateRoot creates a new root class: no parent, no added property, its
// own family (a root is always the representative of its own equivalence
// class), and an empty lazily-materialized property map. A root has zero
// properties, so AllNonConfigurable and AllReadOnly hold vacuously; nextFlags
// only ever clears those bits as properties are added, so seeding them true
// here is what keeps the cached flags accurate all the way down the
// transition tree without a scan.
func (h *Heap) CreateRoot() *Class {
	c := &Class{heap: h, flags: FlagAllNonConfigurable | FlagAllReadOnly}
	c.family = c
	return c
}

// IsRoot reports whether c has no parent.
func (c *Class) IsRoot() bool { return c.parent == nil }

// NumProperties returns the number of named properties a class's objects
// carry.
func (c *Class) NumProperties() uint32 { return c.numProperties }

// Flags returns the class's whole-class flag bitset.
func (c *Class) Flags() ClassFlags { return c.flags }

// Family returns the representative class of c's flag-only equivalence
// class (spec.md §3.1, §4.2 "family").
func (c *Class) Family() *Class { return c.family }

// Parent returns c's parent in the transition tree, or nil at the root.
func (c *Class) Parent() *Class { return c.parent }

// IsKnownLeaf reports whether c is known to have no children in the
// transition map. This is a conservative, weak-reference-aware check:
// a child that has been collected no longer counts. Supplemental feature
// from original_source/include/hermes/VM/HiddenClass.h (HiddenClass::isKnownLeaf),
// dropped by the distilled spec but useful to callers deciding whether a
// class transition can be reused for an in-place-safe optimization.
func (c *Class) IsKnownLeaf() bool {
	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()
	if len(c.transitions) == 0 {
		return true
	}
	for key, ref := range c.transitions {
		if child, ok := ref.Value(); ok && child != nil {
			return false
		}
		delete(c.transitions, key)
	}
	return len(c.transitions) == 0
}
