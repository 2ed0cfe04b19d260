package hiddenclass

import (
	"errors"
	"runtime"
	"testing"

	"shapeline/pkg/symbol"
)

func newTestHeap() *Heap { return NewHeap(nil) }

func TestRootHasNoProperties(t *testing.T) {
	h := newTestHeap()
	root := h.CreateRoot()
	if !root.IsRoot() {
		t.Fatalf("expected fresh class to be root")
	}
	if root.NumProperties() != 0 {
		t.Fatalf("expected root to have zero properties")
	}
	if _, _, ok := root.FindProperty(symbol.ID(2)); ok {
		t.Fatalf("expected no properties on root")
	}
}

func TestRootIsVacuouslyAllNonConfigurableAndReadOnly(t *testing.T) {
	h := newTestHeap()
	root := h.CreateRoot()
	if !root.AreAllNonConfigurable() {
		t.Fatalf("expected a property-less root to vacuously satisfy all-non-configurable")
	}
	if !root.AreAllReadOnly() {
		t.Fatalf("expected a property-less root to vacuously satisfy all-read-only")
	}

	tbl := symbol.NewTable()
	x := tbl.Intern("x")
	child, _, err := root.AddProperty(x, DefaultDataFlags(), false)
	if err != nil {
		t.Fatalf("AddProperty: %v", err)
	}
	if child.AreAllNonConfigurable() || child.AreAllReadOnly() {
		t.Fatalf("expected a writable, configurable property to clear both aggregate flags")
	}
}

func TestAddPropertySharesTransitionForSameShape(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")

	c1, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	c2, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	if c1 != c2 {
		t.Fatalf("expected two objects adding the same property with the same flags to share a class")
	}
}

func TestAddPropertyDifferentFlagsDiverge(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")

	c1, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	c2, _, _ := root.AddProperty(x, DefaultDataFlags().WithWritable(false), false)
	if c1 == c2 {
		t.Fatalf("expected distinct flags to produce distinct classes")
	}
	if c1.Family() != c2.Family() {
		t.Fatalf("expected flag-only siblings to share a family")
	}
}

func TestFindPropertyAcrossChain(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")
	y := tbl.Intern("y")

	c1, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	c2, _, _ := c1.AddProperty(y, DefaultDataFlags(), false)

	if c2.NumProperties() != 2 {
		t.Fatalf("expected two properties, got %d", c2.NumProperties())
	}
	if _, _, ok := c2.FindProperty(x); !ok {
		t.Fatalf("expected to find inherited property x")
	}
	if _, _, ok := c2.FindProperty(y); !ok {
		t.Fatalf("expected to find own property y")
	}
	if found, via := c2.TryFindPropertyFast(x); !found || !via {
		t.Fatalf("expected fast path to find x via transition chain")
	}
}

func TestDeletePropertyForcesDictionaryMode(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")
	y := tbl.Intern("y")

	shape, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	shape, _, _ = shape.AddProperty(y, DefaultDataFlags(), false)

	if shape.Flags().DictionaryMode() {
		t.Fatalf("class should not be dictionary mode before any delete")
	}
	xDesc, _, _ := shape.FindProperty(x)

	dict, err := shape.DeleteProperty(x)
	if err != nil {
		t.Fatalf("expected delete of existing property to succeed")
	}
	if !dict.Flags().DictionaryMode() {
		t.Fatalf("expected delete to force dictionary mode")
	}
	if _, _, found := dict.FindProperty(x); found {
		t.Fatalf("expected x to be gone after delete")
	}
	if _, _, found := dict.FindProperty(y); !found {
		t.Fatalf("expected y to survive delete of x")
	}

	// An add after the delete should reuse x's freed slot index rather
	// than growing the slot numbering unboundedly.
	z := tbl.Intern("z")
	dict2, desc, _ := dict.AddProperty(z, DefaultDataFlags(), false)
	if dict2 != dict {
		t.Fatalf("expected dictionary-mode add to mutate in place")
	}
	if desc.SlotIndex != xDesc.SlotIndex {
		t.Fatalf("expected z to reuse x's freed slot %d, got %d", xDesc.SlotIndex, desc.SlotIndex)
	}
}

func TestPropertyErrorsAreWiredToRealPaths(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")
	y := tbl.Intern("y")

	shape, _, _ := root.AddProperty(x, DefaultDataFlags(), false)

	if _, _, err := shape.UpdateProperty(y, DefaultDataFlags(), false); !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected UpdateProperty on an absent symbol to report ErrPropertyNotFound, got %v", err)
	}
	if _, err := shape.DeleteProperty(y); !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected DeleteProperty on an absent symbol to report ErrPropertyNotFound, got %v", err)
	}

	dict := shape.ConvertToDictionary()
	if _, _, err := dict.AddProperty(x, DefaultDataFlags(), false); !errors.Is(err, ErrPropertyAlreadyDefined) {
		t.Fatalf("expected re-adding an existing symbol on a dictionary-mode class to report ErrPropertyAlreadyDefined, got %v", err)
	}
}

// TestPropertyMapStealSurvivesRepeatedMaterialization exercises the
// gc.Handle-backed steal path (materialize.go): a parent that has already
// lent its cached map out to one child must still be able to rebuild its
// own map, via its own parent, on a later access rather than panicking on a
// handle already marked stolen.
func TestPropertyMapStealSurvivesRepeatedMaterialization(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")
	y := tbl.Intern("y")

	parent, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	_, _, found := parent.FindProperty(x)
	if !found {
		t.Fatalf("expected parent to materialize its own map on first find")
	}

	child, _, _ := parent.AddProperty(y, DefaultDataFlags(), false)
	_, _, found = child.FindProperty(y)
	if !found {
		t.Fatalf("expected child to find its own property after stealing the parent's map")
	}

	// The parent's map was stolen by the child; asking again must
	// regenerate it rather than reuse a now-invalid handle.
	_, _, found = parent.FindProperty(x)
	if !found {
		t.Fatalf("expected parent to regenerate its map after it was stolen by a child")
	}
}

func TestDictionaryThresholdConversion(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	shape := h.CreateRoot()
	for i := 0; i < DictionaryThreshold; i++ {
		sym := tbl.Intern(string(rune('a'+i%26)) + string(rune('0'+i/26)))
		shape, _, _ = shape.AddProperty(sym, DefaultDataFlags(), false)
	}
	if !shape.Flags().DictionaryMode() {
		t.Fatalf("expected class to convert to dictionary mode at the threshold")
	}
	if shape.NumProperties() != DictionaryThreshold {
		t.Fatalf("expected %d properties, got %d", DictionaryThreshold, shape.NumProperties())
	}
}

func TestMakeAllNonConfigurable(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")
	shape, _, _ := root.AddProperty(x, DefaultDataFlags(), false)

	shape.MakeAllNonConfigurable()
	if !shape.AreAllNonConfigurable() {
		t.Fatalf("expected class flag to report all-non-configurable")
	}
	desc, _, _ := shape.FindProperty(x)
	if desc.Flags.Configurable() {
		t.Fatalf("expected property to have lost configurable bit")
	}
}

func TestUpdatePropertyFlagsWithoutTransitionsMintsOneClass(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	x := tbl.Intern("x")
	y := tbl.Intern("y")
	shape, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	shape, _, _ = shape.AddProperty(y, DefaultDataFlags(), false)

	updated := shape.UpdatePropertyFlagsWithoutTransitions(FlagWritable, 0)
	if updated == shape {
		t.Fatalf("expected a new class for the non-dictionary bulk update")
	}
	dx, _, _ := updated.FindProperty(x)
	dy, _, _ := updated.FindProperty(y)
	if dx.Flags.Writable() || dy.Flags.Writable() {
		t.Fatalf("expected writable cleared on every property")
	}
	// original shape must be unaffected (classes are immutable outside
	// dictionary mode).
	origX, _, _ := shape.FindProperty(x)
	if !origX.Flags.Writable() {
		t.Fatalf("expected original class's properties to be untouched")
	}
}

func TestIsKnownLeaf(t *testing.T) {
	h := newTestHeap()
	tbl := symbol.NewTable()
	root := h.CreateRoot()
	if !root.IsKnownLeaf() {
		t.Fatalf("expected fresh root to be a known leaf")
	}
	x := tbl.Intern("x")
	child, _, _ := root.AddProperty(x, DefaultDataFlags(), false)
	if root.IsKnownLeaf() {
		t.Fatalf("expected root with a live child to not be a known leaf")
	}
	runtime.KeepAlive(child)
}
