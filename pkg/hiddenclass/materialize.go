package hiddenclass

import "shapeline/pkg/gc"

// propertyMapFor returns c's property map, materializing it on first use.
// Materialization prefers to steal the nearest ancestor's cached map rather
// than rebuild from scratch: lazy caching plus stealing, grounded on
// original_source/include/hermes/VM/HiddenClass.h's description of
// propertyMap_ as a cache any class can regenerate from its addedSymbol_/
// addedFlags_ chain, dropped by the distilled spec.md but retained here
// since the rest of §4.1/§4.2 (AddProperty's lazy materialization note)
// depends on it existing. The cache itself is held in a gc.Handle (spec.md
// §5): stealing moves ownership of the underlying map out of the parent's
// handle rather than copying the pointer, so the map can never be live
// under two classes' handles at once.
func (c *Class) propertyMapFor() *PropertyMap {
	c.propertyMapMu.Lock()
	defer c.propertyMapMu.Unlock()
	if pm := c.cachedPropertyMap(); pm != nil {
		return pm
	}
	if c.IsRoot() {
		c.propertyMap = gc.NewHandle(NewPropertyMap(0))
		return c.propertyMap.Get()
	}
	if pm, ok := c.stealParentMap(); ok {
		c.propertyMap = gc.NewHandle(pm)
		return pm
	}
	parentMap := c.parent.propertyMapFor()
	cloned := parentMap.Clone()
	cloned.Insert(c.addedSymbol, c.addedFlags)
	c.propertyMap = gc.NewHandle(cloned)
	return cloned
}

// cachedPropertyMap reads c's handle without materializing anything,
// reporting nil for both "never materialized" (the handle's zero value) and
// "stolen away by a child" (the handle's emptied state) alike.
func (c *Class) cachedPropertyMap() *PropertyMap {
	if c.propertyMap.IsEmpty() {
		return nil
	}
	return c.propertyMap.Get()
}

// stealParentMap takes ownership of the parent's cached map out of its
// handle and extends it with this class's own added property, avoiding a
// clone. Safe because the parent's handle reads back empty afterward, so
// propertyMapFor will regenerate it by walking to its own nearest cached
// ancestor the next time anything asks; addedSymbol/addedFlags are permanent
// fields, not stored in the map itself.
func (c *Class) stealParentMap() (*PropertyMap, bool) {
	c.parent.propertyMapMu.Lock()
	defer c.parent.propertyMapMu.Unlock()
	if c.parent.cachedPropertyMap() == nil {
		return nil, false
	}
	moved := c.parent.propertyMap.Steal()
	pm := moved.Get()
	pm.Insert(c.addedSymbol, c.addedFlags)
	return pm, true
}

// materializeOwnDictionaryMap returns the property map of c, a
// dictionary-mode class, for in-place mutation (spec.md §4.2). The map is
// exclusively c's because ConvertToDictionary gives every new dictionary a
// clone of the source class's map, so no further copy is needed here.
func (c *Class) materializeOwnDictionaryMap() *PropertyMap {
	return c.propertyMapFor()
}
