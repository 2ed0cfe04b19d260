// Package symbol interns property names into opaque identifiers.
//
// This stands in for the symbol table that a real engine's garbage collector
// and parser would own; shapeline only needs the interface that the
// hidden-class system consumes (stable, comparable, hashable identifiers
// with two reserved sentinel values for use as dense-map keys).
package symbol

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// ID is an opaque identifier for an interned property name.
type ID uint32

const (
	// Empty is the sentinel used as the "no key" dense-map marker.
	Empty ID = 0
	// Deleted is the sentinel used as the "tombstone" dense-map marker.
	Deleted ID = 1

	firstRealID ID = 2
)

// IsEmpty reports whether id is the reserved empty sentinel.
func (id ID) IsEmpty() bool { return id == Empty }

// IsDeleted reports whether id is the reserved tombstone sentinel.
func (id ID) IsDeleted() bool { return id == Deleted }

// IsValid reports whether id is neither sentinel.
func (id ID) IsValid() bool { return id != Empty && id != Deleted }

// Table interns strings into IDs. Two names that are canonically equivalent
// under Unicode NFC normalization (e.g. a precomposed accented character
// versus the same character spelled with a combining mark) always intern to
// the same ID, matching the guarantee a UTF-16-backed engine gets for free.
type Table struct {
	mu     sync.RWMutex
	byName map[string]ID
	byID   []string
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]ID),
		byID:   []string{"", ""}, // index 0, 1 reserved for Empty, Deleted
	}
}

// Intern returns the stable ID for name, allocating one on first use.
func (t *Table) Intern(name string) ID {
	canonical := norm.NFC.String(name)

	t.mu.RLock()
	if id, ok := t.byName[canonical]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byName[canonical]; ok {
		return id
	}
	id := ID(len(t.byID))
	t.byName[canonical] = id
	t.byID = append(t.byID, canonical)
	return id
}

// Lookup returns the ID already assigned to name, if any.
func (t *Table) Lookup(name string) (ID, bool) {
	canonical := norm.NFC.String(name)
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[canonical]
	return id, ok
}

// Name returns the interned string for id, or "" if id is unknown.
func (t *Table) Name(id ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		return ""
	}
	return t.byID[id]
}

// Len returns the number of real (non-sentinel) interned symbols.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID) - int(firstRealID)
}
