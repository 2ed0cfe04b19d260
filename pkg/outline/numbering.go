// Package outline implements the instruction outliner: module
// linearization, instruction numbering, the suffix-tree target that groups
// matching candidates, outlined-function construction, call-site
// rewriting, and the round-based driver (spec.md §4.4-§4.10). Grounded
// structurally on original_source/lib/Optimizer/Scalar/Outlining.cpp,
// since no example repo in the retrieval pack implements an outliner; the
// IR it consumes is this module's own pkg/ir reference implementation of
// the out-of-scope "IR builder" collaborator.
package outline

import "shapeline/pkg/ir"

// NumberingFlags selects which operand kinds Number resolves to Internal
// or External operands; everything else always falls through to Value
// (spec.md §4.5, §6.2 "NUMBERING_FLAGS").
type NumberingFlags uint8

const (
	FlagInstructions NumberingFlags = 1 << iota
	FlagParameters
)

func (f NumberingFlags) has(bit NumberingFlags) bool { return f&bit != 0 }

// DefaultNumberingFlags matches Outlining.cpp's NUMBERING_FLAGS constant:
// both instruction-internal references and parameter references are
// numbered, leaving literals, instructions defined outside the range, and
// other module-level values as opaque Value operands.
const DefaultNumberingFlags = FlagInstructions | FlagParameters

// OperandKind discriminates an Expression operand's three possible shapes
// (spec.md §3.2).
type OperandKind int

const (
	OperandInternal OperandKind = iota
	OperandExternal
	OperandValue
)

// Operand is the numbering pass's per-operand output: an index into the
// range (Internal), a sequentially-assigned external slot (External), or
// the literal Value itself, compared by identity (Value).
type Operand struct {
	Kind  OperandKind
	Index int
	Value ir.Value
}

// Expression is one instruction's numbered form: its variety plus its
// numbered operands, in the same order as the instruction's own operand
// list (spec.md §3.2).
type Expression struct {
	Variety  ir.Variety
	Operands []Operand
}

// Equal reports whether e and other are structurally identical: same
// variety, same operand count, and pairwise-equal operands (Internal/
// External compared by index, Value compared by identity). This is the
// sole notion of "matches" the outliner uses (spec.md §9 "Numbering
// equivalence").
func (e Expression) Equal(other Expression) bool {
	if e.Variety != other.Variety || len(e.Operands) != len(other.Operands) {
		return false
	}
	for i, op := range e.Operands {
		o := other.Operands[i]
		if op.Kind != o.Kind {
			return false
		}
		switch op.Kind {
		case OperandInternal, OperandExternal:
			if op.Index != o.Index {
				return false
			}
		case OperandValue:
			if op.Value != o.Value {
				return false
			}
		}
	}
	return true
}

// Number produces one Expression per instruction in insts, in order,
// resolving operands against the range itself (Internal), the containing
// function's parameters (External, numbered in first-use order), or
// leaving them as opaque Values (spec.md §4.5). External indices are
// shared across the whole call: a parameter seen for the second time
// anywhere in insts reuses its first-assigned index.
func Number(insts []*ir.Instruction, flags NumberingFlags) []Expression {
	indexOf := make(map[*ir.Instruction]int, len(insts))
	for i, inst := range insts {
		indexOf[inst] = i
	}

	externalIndex := make(map[*ir.Parameter]int)
	nextExternal := 0

	exprs := make([]Expression, len(insts))
	for i, inst := range insts {
		operands := make([]Operand, len(inst.Operands))
		for j, op := range inst.Operands {
			if flags.has(FlagInstructions) {
				if producer, ok := op.(*ir.Instruction); ok {
					if idx, within := indexOf[producer]; within {
						operands[j] = Operand{Kind: OperandInternal, Index: idx}
						continue
					}
				}
			}
			if flags.has(FlagParameters) {
				if param, ok := op.(*ir.Parameter); ok {
					idx, seen := externalIndex[param]
					if !seen {
						idx = nextExternal
						externalIndex[param] = idx
						nextExternal++
					}
					operands[j] = Operand{Kind: OperandExternal, Index: idx}
					continue
				}
			}
			operands[j] = Operand{Kind: OperandValue, Value: op}
		}
		exprs[i] = Expression{Variety: inst.Variety, Operands: operands}
	}
	return exprs
}

// ExternalParameterCount returns one past the highest external index used
// across exprs, i.e. the number of distinct parameters Number discovered —
// the numParameters computation spec.md §4.7 step e needs.
func ExternalParameterCount(exprs []Expression) int {
	max := -1
	for _, e := range exprs {
		for _, op := range e.Operands {
			if op.Kind == OperandExternal && op.Index > max {
				max = op.Index
			}
		}
	}
	return max + 1
}
