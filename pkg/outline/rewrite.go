package outline

import (
	"shapeline/pkg/escape"
	"shapeline/pkg/ir"
	"shapeline/pkg/suffixtree"
)

// collectExternalArgs walks window in program order and, for each operand
// Number would resolve to an External index, records the real value that
// operand held at the call site the first time that index is encountered —
// exactly the argument list an outlined call must pass to line up with the
// parameters buildOutlinedFunction created in the same first-use order
// (spec.md §4.9 step "gather call arguments").
func collectExternalArgs(window []*ir.Instruction) []ir.Value {
	exprs := Number(window, DefaultNumberingFlags)
	byIndex := make(map[int]ir.Value)
	maxIdx := -1
	for i, expr := range exprs {
		for j, op := range expr.Operands {
			if op.Kind != OperandExternal {
				continue
			}
			if _, seen := byIndex[op.Index]; !seen {
				byIndex[op.Index] = window[i].Operands[j]
			}
			if op.Index > maxIdx {
				maxIdx = op.Index
			}
		}
	}
	args := make([]ir.Value, maxIdx+1)
	for idx, v := range byIndex {
		args[idx] = v
	}
	return args
}

// outlineCandidate replaces one occurrence of a matched sequence with a
// direct call to newFn (spec.md §4.9): it re-verifies the escape that
// justified this candidate's length hasn't moved since CreateOutlinedFunctions
// ran, skips candidates whose containing function disagrees with newFn on
// strict mode, builds the call with its caller-side arguments and a
// placeholder receiver (this reference IR has no distinct "current this"
// value to forward), rewires any outside user of the escaping instruction
// onto the call's result, and erases the now-dead template instructions in
// reverse order so internal uses are removed before their producers.
func outlineCandidate(b ir.Builder, module *ir.Module, insts []*ir.Instruction, candidate suffixtree.Candidate, newFn *ir.Function, escapeOffset int, hasEscape bool) (bool, error) {
	window := windowOf(insts, candidate)
	containingFn := window[0].Block.Function
	if containingFn.StrictMode != newFn.StrictMode {
		return false, nil
	}

	analysis := escape.New()
	analysis.AddRange(window)
	if result := analysis.LongestPrefix(); result.Length != candidate.Length {
		return false, invariantViolation("outline: candidate escape length changed since matching")
	}

	args := collectExternalArgs(window)
	receiver := b.UndefinedLiteral(module)
	call := b.CreateDirectCall(newFn, receiver, args)
	b.InsertInstructionBefore(window[0], call)

	if hasEscape {
		b.ReplaceAllUses(window[escapeOffset], call)
	}

	for i := len(window) - 1; i >= 0; i-- {
		b.EraseInstruction(window[i])
	}
	return true, nil
}
