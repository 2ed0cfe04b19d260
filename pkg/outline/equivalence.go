package outline

import (
	"fmt"
	"strings"

	"shapeline/pkg/ir"
)

// equivalenceKey groups instructions for linearization's legal-instruction
// numbering (spec.md §4.3): same variety, same operand count, same literal
// operands at the same positions. Non-literal operands never affect the
// key, which is exactly what lets an outlined function parameterize them.
type equivalenceKey struct {
	variety     ir.Variety
	numOperands int
	literals    string
}

func equivalenceKeyOf(inst *ir.Instruction) equivalenceKey {
	var sb strings.Builder
	for idx, op := range inst.Operands {
		if lit, ok := op.(*ir.Literal); ok {
			fmt.Fprintf(&sb, "%d:%p;", idx, lit)
		}
	}
	return equivalenceKey{
		variety:     inst.Variety,
		numOperands: len(inst.Operands),
		literals:    sb.String(),
	}
}
