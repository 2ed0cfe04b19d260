package outline

import (
	"shapeline/pkg/config"
	"shapeline/pkg/escape"
	"shapeline/pkg/ir"
	"shapeline/pkg/suffixtree"
)

// ModuleOutlinerTarget is the suffixtree.Target this package hands the
// suffix-tree engine: it owns the numbering- and escape-analysis-based
// refinement step that turns a suffix-array match group into zero or more
// outlined function candidates (spec.md §4.7), grounded on
// Outlining.cpp's OutliningIRTarget.
type ModuleOutlinerTarget struct {
	insts    []*ir.Instruction
	settings config.OutliningSettings
}

// NewModuleOutlinerTarget builds a target over insts, the instruction
// vector Linearize produced in lockstep with the integer stream.
func NewModuleOutlinerTarget(insts []*ir.Instruction, settings config.OutliningSettings) *ModuleOutlinerTarget {
	return &ModuleOutlinerTarget{insts: insts, settings: settings}
}

// MinCandidateLength satisfies suffixtree.Target.
func (t *ModuleOutlinerTarget) MinCandidateLength() int {
	if t.settings.MinLength < 1 {
		return 1
	}
	return t.settings.MinLength
}

// CreateOutlinedFunctions implements spec.md §4.7's greedy per-offset
// algorithm verbatim. offset walks positions within the shared
// candidateLength window (not startIndices itself): at each offset it
// numbers the suffixes at startIndices[0]+offset and startIndices[1]+offset,
// finds their common numbering prefix, shrinks that prefix by escape
// analysis, and — once a common length clears minLength and its parameter
// count clears the configured bound — folds in every other start index
// whose same-length, same-offset range matches and fits the escape budget.
// The offset then advances past the whole matched region plus one (to skip
// the instruction that caused the original mismatch), so that for any one
// start index two emitted OutlinedFunctions never claim overlapping
// instructions. Ranges of different start indices are not checked against
// each other and can overlap when those indices lie closer together than
// candidateLength.
func (t *ModuleOutlinerTarget) CreateOutlinedFunctions(startIndices []int, candidateLength int) []suffixtree.OutlinedFunction {
	if len(startIndices) < 2 {
		return nil
	}
	minLen := t.MinCandidateLength()

	var out []suffixtree.OutlinedFunction
	offset := 0
	for offset+minLen <= candidateLength {
		remaining := candidateLength - offset

		// a. Number both anchor suffixes at this offset.
		base := t.window(startIndices[0]+offset, remaining)
		other := t.window(startIndices[1]+offset, remaining)
		baseExprs := Number(base, DefaultNumberingFlags)
		otherExprs := Number(other, DefaultNumberingFlags)

		// b. Walk both numberings in lockstep; stop at the first mismatch.
		commonLength := 0
		for commonLength < len(baseExprs) && commonLength < len(otherExprs) &&
			baseExprs[commonLength].Equal(otherExprs[commonLength]) {
			commonLength++
		}

		// c. Shrink the common prefix by escape analysis.
		analysis := escape.New()
		analysis.AddRange(base[:commonLength])
		analysis.AddRange(other[:commonLength])
		commonLength = analysis.LongestPrefix().Length

		// d. Too short: advance by one instruction and retry.
		if commonLength < minLen {
			offset++
			continue
		}

		// e. Parameter-count bound.
		exprs := Number(base[:commonLength], DefaultNumberingFlags)
		numParameters := ExternalParameterCount(exprs)
		if numParameters < t.settings.MinParameters || numParameters > t.settings.MaxParameters {
			offset++
			continue
		}

		// f. Cost model and the seed candidate pair.
		callOverhead := 2 + numParameters
		frameOverhead := 5 + numParameters
		candidates := []suffixtree.Candidate{
			{StartIdx: startIndices[0] + offset, Length: commonLength, CallOverhead: callOverhead},
			{StartIdx: startIndices[1] + offset, Length: commonLength, CallOverhead: callOverhead},
		}

		// g. Greedily fold in every other start index that still matches
		// and fits within the escape budget already committed to.
		for _, start := range startIndices[2:] {
			candidateWindow := t.window(start+offset, commonLength)
			if len(candidateWindow) != commonLength {
				continue
			}
			if !numberingAgrees(exprs, Number(candidateWindow, DefaultNumberingFlags)) {
				continue
			}
			analysis.AddRange(candidateWindow)
			if analysis.LongestPrefix().Length < commonLength {
				analysis.RemoveLastRange()
				continue
			}
			candidates = append(candidates, suffixtree.Candidate{
				StartIdx:     start + offset,
				Length:       commonLength,
				CallOverhead: callOverhead,
			})
		}

		// h. Emit the function.
		out = append(out, suffixtree.OutlinedFunction{
			Candidates:    candidates,
			SequenceSize:  commonLength,
			FrameOverhead: frameOverhead,
		})

		// i. Advance past the whole matched region plus the mismatching
		// instruction that originally bounded it.
		offset += commonLength + 1
	}
	return out
}

func (t *ModuleOutlinerTarget) window(start, length int) []*ir.Instruction {
	end := start + length
	if end > len(t.insts) {
		end = len(t.insts)
	}
	if start > end {
		start = end
	}
	return t.insts[start:end]
}

func numberingAgrees(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
