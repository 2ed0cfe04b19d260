package ir

// Variety discriminates instruction shapes for equivalence purposes
// (spec.md §3.2, §4.3). It carries no semantics beyond "two instructions of
// the same variety, operand count, and literal positions are
// interchangeable for outlining" — the module is explicitly opaque to the
// meaning of any given variety (spec.md Non-goals, "no IR instruction
// semantics beyond what the outliner consumes").
type Variety int

const (
	// Ordinary varieties a reference caller can build test programs from.
	LoadLiteral Variety = iota
	Add
	Sub
	Mul
	LoadField
	StoreField
	Return
	Branch
	CondBranch
	Phi
	CreateArguments
	AllocStack
	LoadStack
	StoreStack
	LoadVar
	StoreVar
	Call
	DirectCall
)

// IsTerminator reports whether v ends a basic block.
func (v Variety) IsTerminator() bool {
	switch v {
	case Return, Branch, CondBranch:
		return true
	default:
		return false
	}
}

// IsLegalToOutline reports whether inst is eligible for module
// linearization's "legal" numbering (spec.md §4.4): phis, terminators,
// argument/stack-frame management, and anything that touches a closure
// variable are excluded, mirroring instructionIsLegalToOutline's variety
// checks in Outlining.cpp. This reference IR has no distinct Variable
// value kind for closure upvalues, so LoadVar/StoreVar stand in for
// Outlining.cpp's "any operand is a Variable" check.
func IsLegalToOutline(inst *Instruction) bool {
	switch inst.Variety {
	case Phi, CreateArguments, AllocStack, LoadStack, StoreStack, LoadVar, StoreVar:
		return false
	default:
		return !inst.Variety.IsTerminator()
	}
}
