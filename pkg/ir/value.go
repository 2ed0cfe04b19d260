package ir

// Value is anything an instruction operand can refer to: another
// instruction's result, a function parameter, or an interned literal
// (spec.md §3.2). Only *Instruction tracks users, since ReplaceAllUses and
// escape detection only ever need to rewrite uses of an instruction's
// result.
type Value interface {
	isValue()
}

// Parameter is a named formal parameter of a Function. Outlined functions
// create theirs named "p<n>" in increasing index order (spec.md §4.8); the
// reference builder enforces that ordering.
type Parameter struct {
	Function *Function
	Index    int
	Name     string
}

func (*Parameter) isValue() {}

// Literal is a module-interned constant value. Two literals constructed
// from equal Go values via Module.Literal share one *Literal, so pointer
// equality doubles as value equality — exactly what instruction-equivalence
// hashing needs when it hashes a literal operand by pointer (spec.md §4.3).
type Literal struct {
	Value any
}

func (*Literal) isValue() {}
