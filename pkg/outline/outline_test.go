package outline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shapeline/pkg/config"
	"shapeline/pkg/ir"
)

// addChain appends an n-instruction Add chain rooted at fn's first
// parameter and lit, terminated by a Return of the chain's last value, to
// a freshly created entry block of fn. It returns the n chained
// instructions (not the terminating Return).
func addChain(b ir.Builder, fn *ir.Function, lit *ir.Literal, n int) []*ir.Instruction {
	block := b.CreateBasicBlock(fn)
	var cur ir.Value = fn.Parameters[0]

	chain := make([]*ir.Instruction, 0, n)
	for i := 0; i < n; i++ {
		inst := ir.NewInstruction(ir.Add, cur, lit)
		b.AppendInstruction(block, inst)
		chain = append(chain, inst)
		cur = inst
	}
	ret := ir.NewInstruction(ir.Return, cur)
	b.AppendInstruction(block, ret)

	return chain
}

// outlinableChainLength is long enough to clear CreateOutlinedFunctions's
// benefit threshold for a single forwarded parameter and two candidates
// under the spec's literal cost model (callOverhead = 2+numParameters,
// frameOverhead = 5+numParameters): benefit = (2*S - (2*callOverhead +
// frameOverhead)) / S only reaches 1 once S >= 12.
const outlinableChainLength = 12

func TestLinearizeNumbersLegalRunAndIllegalTerminator(t *testing.T) {
	b := ir.DefaultBuilder{}
	m := ir.NewModule("m")
	fn := m.AddFunction("f", false)
	fn.AddParameter("x")
	lit := m.Literal(1.0)
	addChain(b, fn, lit, 3)

	stream, insts := Linearize(m, 3)
	require.Len(t, insts, 4, "three legal adds plus one collapsed illegal return")
	require.Equal(t, stream[0], stream[1])
	require.Equal(t, stream[1], stream[2])
	require.Equal(t, illegalStart, stream[3], "first illegal instruction gets the sentinel base id")
}

func TestLinearizeSkipsBlockBelowMinLength(t *testing.T) {
	b := ir.DefaultBuilder{}
	m := ir.NewModule("m")
	fn := m.AddFunction("f", false)
	block := b.CreateBasicBlock(fn)
	lit := m.Literal(1.0)
	i1 := ir.NewInstruction(ir.LoadLiteral, lit)
	b.AppendInstruction(block, i1)

	stream, insts := Linearize(m, 3)
	require.Empty(t, stream)
	require.Empty(t, insts)
}

func TestNumberResolvesOperandKinds(t *testing.T) {
	b := ir.DefaultBuilder{}
	m := ir.NewModule("m")
	fn := m.AddFunction("f", false)
	fn.AddParameter("x")
	lit := m.Literal(1.0)
	chain := addChain(b, fn, lit, 3)

	exprs := Number(chain, DefaultNumberingFlags)
	require.Len(t, exprs, 3)
	require.Equal(t, OperandExternal, exprs[0].Operands[0].Kind)
	require.Equal(t, OperandValue, exprs[0].Operands[1].Kind)
	require.Equal(t, OperandInternal, exprs[1].Operands[0].Kind)
	require.Equal(t, 0, exprs[1].Operands[0].Index)
	require.Equal(t, 1, ExternalParameterCount(exprs[:1]))
}

func TestRunOnModuleOutlinesRepeatedSequence(t *testing.T) {
	b := ir.DefaultBuilder{}
	m := ir.NewModule("m")
	lit := m.Literal(7.0)

	fnA := m.AddFunction("a", false)
	fnA.AddParameter("x")
	addChain(b, fnA, lit, outlinableChainLength)

	fnB := m.AddFunction("b", false)
	fnB.AddParameter("x")
	addChain(b, fnB, lit, outlinableChainLength)

	settings := config.DefaultOutliningSettings()
	stats, err := RunOnModule(b, m, settings)
	require.NoError(t, err)
	require.Equal(t, 1, stats.NumFunctionsCreated)
	require.Equal(t, 2, stats.NumCandidatesOutlined)

	var outlined *ir.Function
	for _, fn := range m.Functions {
		if fn != fnA && fn != fnB {
			outlined = fn
			break
		}
	}
	require.NotNil(t, outlined, "expected a new OUTLINED_FUNCTION to have been created")
	require.NotNil(t, outlined.Entry())
	require.Equal(t, 2, len(outlined.Parameters), "one forwarded operand plus the trailing this parameter")

	for _, fn := range []*ir.Function{fnA, fnB} {
		block := fn.Entry()
		var sawDirectCall bool
		for inst := block.First(); inst != nil; inst = inst.Next {
			if inst.Variety == ir.DirectCall {
				sawDirectCall = true
			}
		}
		require.True(t, sawDirectCall, "caller should have been rewritten to a direct call")
	}
}

func TestRunOnModuleSkipsStrictModeMismatch(t *testing.T) {
	// The outlined function's strict mode is fixed by whichever candidate
	// builds the template (the first one encountered in linearization
	// order); a later candidate whose own function disagrees on strict
	// mode is rejected at rewrite time and must be left completely
	// untouched (spec.md §4.9 "strict mode mismatch").
	b := ir.DefaultBuilder{}
	m := ir.NewModule("m")
	lit := m.Literal(7.0)

	fnFirst := m.AddFunction("first", true)
	fnFirst.AddParameter("x")
	addChain(b, fnFirst, lit, outlinableChainLength)

	fnMismatched := m.AddFunction("mismatched", false)
	fnMismatched.AddParameter("x")
	addChain(b, fnMismatched, lit, outlinableChainLength)

	settings := config.DefaultOutliningSettings()
	_, err := RunOnModule(b, m, settings)
	require.NoError(t, err)

	var sawDirectCallInMismatched bool
	block := fnMismatched.Entry()
	count := 0
	for inst := block.First(); inst != nil; inst = inst.Next {
		count++
		if inst.Variety == ir.DirectCall {
			sawDirectCallInMismatched = true
		}
	}
	require.False(t, sawDirectCallInMismatched, "a caller must never be rewritten against an outlined function with different strict mode")
	require.Equal(t, outlinableChainLength+1, count, "mismatched function's instructions must survive untouched")
}

// TestRunOnModuleFoldsInThirdOccurrence exercises step g of the greedy
// per-offset algorithm: a third occurrence beyond the anchor pair must be
// folded into the same OutlinedFunction rather than starting a second one
// that could claim instructions the first has already erased.
func TestRunOnModuleFoldsInThirdOccurrence(t *testing.T) {
	b := ir.DefaultBuilder{}
	m := ir.NewModule("m")
	lit := m.Literal(7.0)

	var fns []*ir.Function
	for _, name := range []string{"a", "b", "c"} {
		fn := m.AddFunction(name, false)
		fn.AddParameter("x")
		addChain(b, fn, lit, outlinableChainLength)
		fns = append(fns, fn)
	}

	settings := config.DefaultOutliningSettings()
	stats, err := RunOnModule(b, m, settings)
	require.NoError(t, err)
	require.Equal(t, 1, stats.NumFunctionsCreated, "all three occurrences should fold into a single outlined function")
	require.Equal(t, 3, stats.NumCandidatesOutlined)

	for _, fn := range fns {
		var sawDirectCall bool
		for inst := fn.Entry().First(); inst != nil; inst = inst.Next {
			if inst.Variety == ir.DirectCall {
				sawDirectCall = true
			}
		}
		require.True(t, sawDirectCall, "every occurrence should have been rewritten to a direct call")
	}
}
