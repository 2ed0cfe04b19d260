package gc

import "runtime"

// addCleanup registers fn to run after v becomes unreachable. v must be a
// pointer, as required by runtime.SetFinalizer; hidden classes, property
// maps, and other cells allocated through DefaultAllocator are always
// pointers, so this holds in practice.
func addCleanup(v any, fn func()) {
	runtime.SetFinalizer(v, func(any) { fn() })
}
