package ir

import "fmt"

// Module owns a set of functions plus the module-wide literal pool and
// unique-name counters that both the outliner and this reference builder
// need (spec.md §6.5, "a per-module uniqueness suffix chosen by the
// module's unique-name helper").
type Module struct {
	Name      string
	Functions []*Function

	literals map[any]*Literal
	names    map[string]int
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, literals: make(map[any]*Literal), names: make(map[string]int)}
}

// AddFunction appends a new function named name to the module.
func (m *Module) AddFunction(name string, strict bool) *Function {
	f := &Function{Module: m, Name: name, StrictMode: strict}
	m.Functions = append(m.Functions, f)
	return f
}

// InsertFunctionBefore inserts a new function immediately before existing
// in the module's function list, used when OutliningSettings.PlaceNearCaller
// is set (spec.md §4.8 step 1). A nil existing appends at module end.
func (m *Module) InsertFunctionBefore(existing *Function, name string, strict bool) *Function {
	f := &Function{Module: m, Name: name, StrictMode: strict}
	if existing == nil {
		m.Functions = append(m.Functions, f)
		return f
	}
	idx := len(m.Functions)
	for i, fn := range m.Functions {
		if fn == existing {
			idx = i
			break
		}
	}
	m.Functions = append(m.Functions, nil)
	copy(m.Functions[idx+1:], m.Functions[idx:])
	m.Functions[idx] = f
	return f
}

// Literal interns value, returning the same *Literal for equal Go values.
// value must be comparable (usable as a map key); this reference builder
// only ever interns the literal kinds the outliner's test programs need —
// numbers, strings, bools, and the sentinel value UndefinedLiteral uses.
func (m *Module) Literal(value any) *Literal {
	if lit, ok := m.literals[value]; ok {
		return lit
	}
	lit := &Literal{Value: value}
	m.literals[value] = lit
	return lit
}

// UndefinedLiteral returns the module's interned "undefined" literal,
// standing in for the VM's literal-undefined IR node (spec.md §6.2
// "create literal-undefined").
func (m *Module) UndefinedLiteral() *Literal {
	return m.Literal(undefinedSentinel{})
}

type undefinedSentinel struct{}

// UniqueName derives a module-unique name from base, appending a numeric
// suffix starting at the second use (mirroring Module::deriveUniqueInternalName:
// the first use of a base name is unadorned, later ones get "_1", "_2", ...).
func (m *Module) UniqueName(base string) string {
	n := m.names[base]
	m.names[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}
