package hiddenclass

import (
	"github.com/pkg/errors"

	"shapeline/pkg/gc"
	"shapeline/pkg/symbol"
)

// FindProperty resolves sym to its descriptor and map position, materializing
// c's property map if it has not been built yet. Callers that only need to
// know whether a property exists (not its slot or flags) should prefer
// TryFindPropertyFast, which can often answer without materializing
// anything.
func (c *Class) FindProperty(sym symbol.ID) (NamedPropertyDescriptor, PropertyPos, bool) {
	pm := c.propertyMapFor()
	pos, desc, ok := pm.Find(sym)
	return desc, pos, ok
}

// TryFindPropertyFast answers a pure existence question by walking the
// addedSymbol chain from c up to its root, without touching (and so without
// materializing) any property map. It reports found=true, viaTransition=true
// when it can answer this way; found=false, viaTransition=false when sym is
// definitely absent from the chain it walked. It always defers to
// FindProperty for dictionary-mode classes, since those mutate their map in
// place and the addedSymbol chain no longer reflects their live property
// set.
//
// This resolves the spec's open question about findProperty's
// transition-table fast path: rather than have the fast path silently
// materialize the map to hand back a usable descriptor, it stays cheap and
// only ever returns existence, leaving materialization to the caller that
// actually needs a slot.
func (c *Class) TryFindPropertyFast(sym symbol.ID) (found, viaTransition bool) {
	if c.flags.DictionaryMode() {
		_, _, found := c.FindProperty(sym)
		return found, false
	}
	for cur := c; !cur.IsRoot(); cur = cur.parent {
		if cur.addedSymbol == sym {
			return true, true
		}
	}
	return false, false
}

// DebugIsPropertyDefined is a supplemental debug-assertion helper from
// original_source/include/hermes/VM/HiddenClass.h
// (HiddenClass::debugIsPropertyDefined), dropped by the distilled spec but
// useful wherever calling code wants to assert a property's presence
// without caring about its descriptor.
func (c *Class) DebugIsPropertyDefined(sym symbol.ID) bool {
	_, _, found := c.FindProperty(sym)
	return found
}

// AddProperty adds a new named property to c, returning the class objects
// of this shape should transition to and the descriptor assigned to the new
// property. isIndexLike tells the class whether sym's name reads as an
// array index (spec.md §3.1 HasIndexLikeProperties); the symbol table that
// owns name strings is responsible for that check (see symbol.IsIndexLike),
// since this package only ever sees interned IDs.
//
// On a dictionary-mode class, adding a symbol already present is a caller
// error (non-dictionary classes never reach this path for an existing
// symbol: findTransition resolves it to the shared child instead), reported
// as ErrPropertyAlreadyDefined rather than a panic, since a dictionary's
// membership can depend on prior deletes a caller may legitimately race
// against.
func (c *Class) AddProperty(sym symbol.ID, flags PropertyFlags, isIndexLike bool) (*Class, NamedPropertyDescriptor, error) {
	if c.flags.DictionaryMode() {
		pm := c.materializeOwnDictionaryMap()
		if _, _, exists := pm.Find(sym); exists {
			return c, NamedPropertyDescriptor{}, errors.WithMessagef(ErrPropertyAlreadyDefined, "symbol %v", sym)
		}
		pos, desc := pm.Insert(sym, flags)
		_ = pos
		c.numProperties++
		c.flags = c.nextFlags(flags, isIndexLike)
		c.ClearForInCache()
		return c, desc, nil
	}

	key := transitionKey{sym: sym, flags: flags}
	if child, ok := c.findTransition(key); ok {
		_, desc, _ := child.propertyMapFor().Find(sym)
		return child, desc, nil
	}

	child := &Class{
		heap:          c.heap,
		flags:         c.nextFlags(flags, isIndexLike),
		parent:        c,
		addedSymbol:   sym,
		addedFlags:    flags,
		numProperties: c.numProperties + 1,
	}
	if fam := c.siblingFamily(sym); fam != nil {
		child.family = fam
	} else {
		child.family = child
	}
	if child.numProperties >= DictionaryThreshold {
		dict := child.ConvertToDictionary()
		c.addTransition(key, dict)
		return dict, dict.descriptorOrPanic(sym), nil
	}
	c.addTransition(key, child)
	_, desc, _ := child.propertyMapFor().Find(sym)
	return child, desc, nil
}

func (c *Class) descriptorOrPanic(sym symbol.ID) NamedPropertyDescriptor {
	_, desc, ok := c.propertyMapFor().Find(sym)
	if !ok {
		invariantViolation("descriptorOrPanic: %v missing after conversion", sym)
	}
	return desc
}

// nextFlags computes the ClassFlags a class gains by adding a property with
// the given per-property flags: HasIndexLikeProperties can only turn on,
// while AllNonConfigurable/AllReadOnly can only turn off, since a brand new
// property can only ever violate those invariants, never restore them.
func (c *Class) nextFlags(added PropertyFlags, isIndexLike bool) ClassFlags {
	f := c.flags
	if isIndexLike {
		f |= FlagHasIndexLikeProperties
	}
	if added.Configurable() {
		f &^= FlagAllNonConfigurable
	}
	if added.Writable() || added.Accessor() {
		f &^= FlagAllReadOnly
	}
	return f
}

// UpdateProperty changes the flags of an existing property. When the
// property being changed is the most recently added one on a
// non-dictionary class, this reuses the ordinary transition machinery (a
// flag-only sibling transition off the same parent, sharing family with any
// other flag variant already created). Changing any other property forces
// the class into dictionary mode first, mirroring Hermes's updateProperty.
func (c *Class) UpdateProperty(sym symbol.ID, newFlags PropertyFlags, isIndexLike bool) (*Class, NamedPropertyDescriptor, error) {
	if c.flags.DictionaryMode() {
		pm := c.materializeOwnDictionaryMap()
		pos, desc, ok := pm.Find(sym)
		if !ok {
			return c, NamedPropertyDescriptor{}, errors.WithMessagef(ErrPropertyNotFound, "symbol %v", sym)
		}
		desc.Flags = newFlags
		pm.SetDescriptor(pos, desc)
		c.flags = computeAggregateFlags(c.flags, pm)
		return c, desc, nil
	}

	if _, _, found := c.FindProperty(sym); !found {
		return c, NamedPropertyDescriptor{}, errors.WithMessagef(ErrPropertyNotFound, "symbol %v", sym)
	}
	if sym == c.addedSymbol {
		child, desc, err := c.parent.AddProperty(sym, newFlags, isIndexLike)
		return child, desc, err
	}
	dict := c.ConvertToDictionary()
	return dict.UpdateProperty(sym, newFlags, isIndexLike)
}

// DeleteProperty removes sym from c, forcing conversion to dictionary mode
// first if c is not already one (spec.md §4.2: "deletion always produces,
// or reuses, a dictionary-mode class"). It returns the resulting class
// (which is c itself once already a dictionary) and, if sym was not present
// to delete, ErrPropertyNotFound.
func (c *Class) DeleteProperty(sym symbol.ID) (*Class, error) {
	dict := c.ConvertToDictionary()
	pm := dict.materializeOwnDictionaryMap()
	pos, _, ok := pm.Find(sym)
	if !ok {
		return dict, errors.WithMessagef(ErrPropertyNotFound, "symbol %v", sym)
	}
	pm.Remove(pos)
	dict.numProperties--
	dict.flags = computeAggregateFlags(dict.flags, pm)
	dict.ClearForInCache()
	return dict, nil
}

// ConvertToDictionary returns the dictionary-mode class reached from c,
// creating and caching it on first use. A class that is already in
// dictionary mode returns itself.
func (c *Class) ConvertToDictionary() *Class {
	if c.flags.DictionaryMode() {
		return c
	}
	key := transitionKey{sym: symbol.Deleted, flags: 0}
	if existing, ok := c.findTransition(key); ok {
		return existing
	}
	pm := c.propertyMapFor().Clone()
	dict := &Class{
		heap:          c.heap,
		flags:         (c.flags | FlagDictionaryMode) &^ (FlagAllNonConfigurable | FlagAllReadOnly),
		numProperties: c.numProperties,
		propertyMap:   gc.NewHandle(pm),
	}
	dict.family = dict
	dict.flags = computeAggregateFlags(dict.flags, pm)
	c.addTransition(key, dict)
	return dict
}

// MakeAllNonConfigurable clears the configurable bit on every property and
// sets the class-level flag. As in Hermes, this mutates the class's own
// property map directly rather than going through the transition
// machinery; callers must only do this when no other class can still be
// relying on the current (shared) map contents.
func (c *Class) MakeAllNonConfigurable() {
	pm := c.propertyMapFor()
	pm.MutateAll(func(d NamedPropertyDescriptor) NamedPropertyDescriptor {
		d.Flags = d.Flags.WithConfigurable(false)
		return d
	})
	c.flags |= FlagAllNonConfigurable
}

// MakeAllReadOnly clears the writable bit on every data property (accessors
// are unaffected) and the configurable bit on all properties, and sets both
// class-level flags.
func (c *Class) MakeAllReadOnly() {
	pm := c.propertyMapFor()
	pm.MutateAll(func(d NamedPropertyDescriptor) NamedPropertyDescriptor {
		if !d.Flags.Accessor() {
			d.Flags = d.Flags.WithWritable(false)
		}
		d.Flags = d.Flags.WithConfigurable(false)
		return d
	})
	c.flags |= FlagAllReadOnly | FlagAllNonConfigurable
}

func (c *Class) AreAllNonConfigurable() bool { return c.flags.AllNonConfigurable() }
func (c *Class) AreAllReadOnly() bool        { return c.flags.AllReadOnly() }

// UpdatePropertyFlagsWithoutTransitions applies clear/set to every
// property's flags in a single step, minting at most one new class rather
// than one transition per property (spec.md §4.2). On a dictionary-mode
// class the mutation happens in place and c itself is returned.
func (c *Class) UpdatePropertyFlagsWithoutTransitions(clear, set PropertyFlags) *Class {
	if c.flags.DictionaryMode() {
		pm := c.materializeOwnDictionaryMap()
		pm.MutateAll(func(d NamedPropertyDescriptor) NamedPropertyDescriptor {
			d.Flags = applyMask(d.Flags, clear, set)
			return d
		})
		c.flags = computeAggregateFlags(c.flags, pm)
		return c
	}

	pm := c.propertyMapFor().Clone()
	pm.MutateAll(func(d NamedPropertyDescriptor) NamedPropertyDescriptor {
		d.Flags = applyMask(d.Flags, clear, set)
		return d
	})
	next := &Class{
		heap:          c.heap,
		parent:        c.parent,
		family:        c.family,
		addedSymbol:   c.addedSymbol,
		addedFlags:    applyMask(c.addedFlags, clear, set),
		numProperties: c.numProperties,
		propertyMap:   gc.NewHandle(pm),
	}
	next.flags = computeAggregateFlags(c.flags, pm)
	return next
}

// ForEachProperty visits every live property in insertion order.
func (c *Class) ForEachProperty(fn func(symbol.ID, NamedPropertyDescriptor)) {
	c.propertyMapFor().ForEach(fn)
}

// ForEachPropertyWhile visits live properties in insertion order until fn
// returns false.
func (c *Class) ForEachPropertyWhile(fn func(symbol.ID, NamedPropertyDescriptor) bool) {
	c.propertyMapFor().ForEachWhile(fn)
}

// computeAggregateFlags rescans pm to determine whether the
// AllNonConfigurable/AllReadOnly class flags still hold, leaving all other
// bits of existing untouched.
func computeAggregateFlags(existing ClassFlags, pm *PropertyMap) ClassFlags {
	allNonConfigurable := true
	allReadOnly := true
	pm.ForEach(func(_ symbol.ID, d NamedPropertyDescriptor) {
		if d.Flags.Configurable() {
			allNonConfigurable = false
		}
		if d.Flags.Writable() || d.Flags.Accessor() {
			allReadOnly = false
		}
	})
	result := existing &^ (FlagAllNonConfigurable | FlagAllReadOnly)
	if allNonConfigurable {
		result |= FlagAllNonConfigurable
	}
	if allReadOnly {
		result |= FlagAllReadOnly
	}
	return result
}
