package outline

import "shapeline/pkg/ir"

// Reserved sentinel values mirror Hermes's DenseMapInfo<unsigned> sentinel
// keys (the suffix-tree engine's hash table reserves two values near
// unsigned(-1)); the illegal-instruction counter must start strictly below
// them so no legal or illegal identifier the linearizer emits can ever
// collide with an engine sentinel (spec.md §4.4, §9 "Integer stream
// sentinel reservations"). This package's own pkg/suffixtree reference
// engine does not happen to need these particular values, but the
// linearizer still reserves them so a generalized-suffix-tree engine could
// be swapped in without a collision.
const (
	sentinelEmpty   = 1<<31 - 1
	sentinelDeleted = sentinelEmpty - 1
	illegalStart    = sentinelDeleted - 2
)

func init() {
	if illegalStart >= sentinelDeleted || sentinelDeleted >= sentinelEmpty {
		panic("outline: sentinel reservation ordering violated")
	}
}

// Linearize walks every function and basic block of m in program order,
// skipping blocks shorter than minLength, and produces the parallel
// integer stream and instruction-pointer vectors the suffix-tree engine
// and its target consume (spec.md §4.4). Legal instructions are numbered
// upward from zero by equivalence class; illegal instructions are numbered
// downward from illegalStart, with consecutive illegal runs collapsed to
// their first member.
func Linearize(m *ir.Module, minLength int) (stream []int, insts []*ir.Instruction) {
	legalIDs := make(map[equivalenceKey]int)
	nextLegal := 0
	nextIllegal := 0

	for _, fn := range m.Functions {
		for _, block := range fn.Blocks {
			if block.Len() < minLength {
				continue
			}
			inRun := false
			for inst := block.First(); inst != nil; inst = inst.Next {
				if !ir.IsLegalToOutline(inst) {
					if inRun {
						continue
					}
					inRun = true
					id := illegalStart - nextIllegal
					nextIllegal++
					stream = append(stream, id)
					insts = append(insts, inst)
					continue
				}
				inRun = false
				key := equivalenceKeyOf(inst)
				id, ok := legalIDs[key]
				if !ok {
					id = nextLegal
					legalIDs[key] = id
					nextLegal++
				}
				stream = append(stream, id)
				insts = append(insts, inst)
			}
		}
	}
	return stream, insts
}
