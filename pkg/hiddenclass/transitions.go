package hiddenclass

import (
	"shapeline/pkg/gc"
	"shapeline/pkg/symbol"
)

// findTransition looks up the child reached by adding (or re-flagging) sym
// with flags, pruning any entry whose weak referent has already been
// collected (spec.md §9 "weak children in transition map").
func (c *Class) findTransition(key transitionKey) (*Class, bool) {
	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()
	ref, ok := c.transitions[key]
	if !ok {
		return nil, false
	}
	child, alive := ref.Value()
	if !alive {
		delete(c.transitions, key)
		return nil, false
	}
	return child, true
}

// siblingFamily scans c's existing transitions for any live child that adds
// the same symbol (regardless of flags) and returns its family, so that
// flag-only siblings share one equivalence class (spec.md §3.1, §4.2
// "family"). Returns nil if no such sibling exists yet.
func (c *Class) siblingFamily(sym symbol.ID) *Class {
	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()
	for key, ref := range c.transitions {
		if key.sym != sym {
			continue
		}
		if child, alive := ref.Value(); alive {
			return child.family
		}
		delete(c.transitions, key)
	}
	return nil
}

func (c *Class) addTransition(key transitionKey, child *Class) {
	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()
	if c.transitions == nil {
		c.transitions = make(map[transitionKey]gc.WeakRef[Class])
	}
	c.transitions[key] = gc.NewWeakRef(child)
	c.heap.Allocator.WriteBarrier(c, child)
}
