package outline

import (
	"fmt"

	"shapeline/pkg/config"
	"shapeline/pkg/escape"
	"shapeline/pkg/ir"
	"shapeline/pkg/suffixtree"
)

// outlinedFunctionBaseName is Outlining.cpp's fixed name base; the builder
// appends a module-unique numeric suffix through Module.UniqueName the
// same way it would for any other generated function (spec.md §4.8,
// §6.5).
const outlinedFunctionBaseName = "OUTLINED_FUNCTION"

// firstLiveCandidate returns fn's first non-deleted candidate, used as the
// template whose instructions are cloned into the new function body
// (spec.md §4.8 step 2).
func firstLiveCandidate(fn *suffixtree.OutlinedFunction) (suffixtree.Candidate, bool) {
	for _, c := range fn.Candidates {
		if !c.Deleted {
			return c, true
		}
	}
	return suffixtree.Candidate{}, false
}

func windowOf(insts []*ir.Instruction, c suffixtree.Candidate) []*ir.Instruction {
	return insts[c.StartIdx : c.StartIdx+c.Length]
}

// findEscape runs a fresh escape analysis over every live candidate's
// window and reports the single instruction (by offset within the window)
// whose result must flow out of the outlined function as its return value,
// if any (spec.md §4.6, §4.8 step 5 "return the escaping value, or
// undefined if there is none").
func findEscape(insts []*ir.Instruction, fn *suffixtree.OutlinedFunction) (offset int, found bool) {
	analysis := escape.New()
	for _, c := range fn.Candidates {
		if c.Deleted {
			continue
		}
		analysis.AddRange(windowOf(insts, c))
	}
	result := analysis.LongestPrefix()
	return result.Offset, result.Found
}

// buildOutlinedFunction materializes a new function from fn's template
// candidate: a fresh entry block holding a clone of every template
// instruction with Internal/External/Value operands resolved against the
// newly created results and parameters, a trailing "this" parameter, and a
// final Return of either the escaping value or undefined (spec.md §4.8).
func buildOutlinedFunction(b ir.Builder, module *ir.Module, insts []*ir.Instruction, fn *suffixtree.OutlinedFunction, settings config.OutliningSettings) (*ir.Function, error) {
	template, ok := firstLiveCandidate(fn)
	if !ok {
		return nil, invariantViolation("outline: no live candidate to build a template from")
	}
	window := windowOf(insts, template)
	if len(window) == 0 {
		return nil, invariantViolation("outline: empty candidate window")
	}

	containingFn := window[0].Block.Function
	exprs := Number(window, DefaultNumberingFlags)
	numParameters := ExternalParameterCount(exprs)

	var insertBefore *ir.Function
	if settings.PlaceNearCaller {
		insertBefore = containingFn
	}
	newFn := b.CreateFunction(module, outlinedFunctionBaseName, containingFn.StrictMode, insertBefore)
	entry := b.CreateBasicBlock(newFn)

	params := make([]*ir.Parameter, numParameters)
	for i := 0; i < numParameters; i++ {
		params[i] = b.CreateParameter(newFn, fmt.Sprintf("p%d", i))
	}

	results := make([]ir.Value, len(window))
	for i, tmpl := range window {
		expr := exprs[i]
		operands := make([]ir.Value, len(expr.Operands))
		for j, op := range expr.Operands {
			switch op.Kind {
			case OperandInternal:
				operands[j] = results[op.Index]
			case OperandExternal:
				operands[j] = params[op.Index]
			default:
				operands[j] = op.Value
			}
		}
		cloned := b.CloneInstruction(tmpl, operands)
		b.AppendInstruction(entry, cloned)
		results[i] = cloned
	}

	b.CreateParameter(newFn, "this")

	escapeOffset, hasEscape := findEscape(insts, fn)
	var returnValue ir.Value
	if hasEscape {
		returnValue = results[escapeOffset]
	} else {
		returnValue = b.UndefinedLiteral(module)
	}
	ret := ir.NewInstruction(ir.Return, returnValue)
	b.AppendInstruction(entry, ret)

	return newFn, nil
}
