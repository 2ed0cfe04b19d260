// Package gc models the garbage-collector collaborator that the
// hidden-class system is specified against (spec.md §6.1): typed
// allocation, write barriers, weak reference slots, per-cell finalization,
// and malloc-size accounting. shapeline does not implement a real moving
// collector; Go's own garbage collector already does that job. What this
// package provides is the discipline the spec requires on top of it: a
// Handle type that documents "this value must survive a collection point"
// at the API boundary, and a WeakRef built on the standard library's weak
// package (the same mechanism paserati's own WeakMap/WeakSet use).
package gc

import (
	"weak"

	"github.com/pkg/errors"
)

// ErrOutOfMemory names spec.md §7's out-of-memory error kind. Go's allocator
// panics instead of returning an error on real exhaustion, and no function
// in this module returns ErrOutOfMemory: the Allocator interface has no
// error-returning method, and hidden-class operations report only property
// errors.
var ErrOutOfMemory = errors.New("gc: out of memory")

// Handle wraps a value that must be treated as rooted across any operation
// that may allocate. It carries no runtime behavior beyond documenting and
// enforcing ownership transfer at the type level: Steal empties the source
// handle so the same pointer can never be live under two holders at once,
// which is exactly the discipline property-map stealing depends on
// (spec.md §5, "Ownership transfer must leave the previous holder's
// reference cleared before publishing the new holder").
type Handle[T any] struct {
	value T
	empty bool
}

// NewHandle roots a value.
func NewHandle[T any](v T) Handle[T] {
	return Handle[T]{value: v}
}

// Get returns the rooted value. Calling Get on an emptied handle panics,
// since that indicates a use-after-steal bug.
func (h Handle[T]) Get() T {
	if h.empty {
		panic("gc: use of handle after its value was stolen")
	}
	return h.value
}

// IsEmpty reports whether the handle's value has been stolen.
func (h Handle[T]) IsEmpty() bool { return h.empty }

// Steal moves the value out of h into a fresh handle, leaving h empty. This
// is the Go expression of "moved, not copied" ownership transfer.
func (h *Handle[T]) Steal() Handle[T] {
	if h.empty {
		panic("gc: cannot steal from an already-empty handle")
	}
	moved := Handle[T]{value: h.value}
	var zero T
	h.value = zero
	h.empty = true
	return moved
}

// WeakRef is a weakly-held reference to a heap object of type T, used by
// the hidden-class transition map so that unreferenced child classes can be
// collected (spec.md §3.1, §5, §9 "Weak children in transition map").
type WeakRef[T any] struct {
	ptr weak.Pointer[T]
}

// NewWeakRef creates a weak reference to v.
func NewWeakRef[T any](v *T) WeakRef[T] {
	return WeakRef[T]{ptr: weak.Make(v)}
}

// Value returns the referent and true if it is still alive, or (nil, false)
// if it has been collected.
func (w WeakRef[T]) Value() (*T, bool) {
	v := w.ptr.Value()
	return v, v != nil
}

// Allocator is the minimal GC-facing surface the hidden-class system
// depends on (spec.md §6.1): a write barrier invoked on every pointer
// update, a finalization hook, and malloc-size reporting for
// external-memory accounting. It has no allocation or weak-reference
// method: cells are ordinary Go allocations, rooted with NewHandle, and
// weak references come from NewWeakRef. shapeline's
// reference Allocator is a thin pass-through to Go's own allocator and
// finalizer machinery.
type Allocator interface {
	// WriteBarrier must be called whenever a GC-managed pointer field is
	// overwritten. The reference allocator's implementation is a no-op
	// (Go's collector needs no write barrier calls from user code) but the
	// call sites remain in hiddenclass so that a generational or moving
	// collector could be substituted without touching call sites.
	WriteBarrier(holder, newValue any)

	// OnFinalize registers fn to run when v becomes unreachable. The
	// reference allocator delegates to runtime.SetFinalizer.
	OnFinalize(v any, fn func())

	// MallocSize reports the external (non-GC-managed) memory size
	// attributed to v, for accounting purposes only.
	MallocSize(v any) uintptr
}

// DefaultAllocator is a reference Allocator backed directly by the Go
// runtime: OnFinalize uses runtime.SetFinalizer and WriteBarrier/MallocSize
// are informational no-ops, since Go's collector already tracks pointer
// writes and heap accounting for us.
type DefaultAllocator struct{}

var _ Allocator = DefaultAllocator{}

func (DefaultAllocator) WriteBarrier(holder, newValue any) {}

func (DefaultAllocator) OnFinalize(v any, fn func()) {
	addCleanup(v, fn)
}

func (DefaultAllocator) MallocSize(v any) uintptr { return 0 }
