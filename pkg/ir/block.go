package ir

// BasicBlock is an intrusive doubly-linked list of instructions belonging
// to one Function (spec.md §3.2 "parent basic block, linkage to
// previous/next" lives on Instruction; BasicBlock only tracks the ends).
type BasicBlock struct {
	Function *Function

	first, last *Instruction
	length      int
}

// Append adds inst to the end of b.
func (b *BasicBlock) Append(inst *Instruction) {
	inst.Block = b
	inst.Prev = b.last
	inst.Next = nil
	if b.last != nil {
		b.last.Next = inst
	} else {
		b.first = inst
	}
	b.last = inst
	b.length++
}

// InsertBefore inserts inst immediately before mark, which must already
// belong to b. Used by call-site rewriting to splice a direct call in
// front of a candidate's first instruction (spec.md §4.9 step 5).
func (b *BasicBlock) InsertBefore(mark, inst *Instruction) {
	if mark == nil || mark.Block != b {
		panic(&InvariantError{msg: "ir: InsertBefore mark does not belong to this block"})
	}
	inst.Block = b
	inst.Next = mark
	inst.Prev = mark.Prev
	if mark.Prev != nil {
		mark.Prev.Next = inst
	} else {
		b.first = inst
	}
	mark.Prev = inst
	b.length++
}

func (b *BasicBlock) unlink(inst *Instruction) {
	if inst.Prev != nil {
		inst.Prev.Next = inst.Next
	} else {
		b.first = inst.Next
	}
	if inst.Next != nil {
		inst.Next.Prev = inst.Prev
	} else {
		b.last = inst.Prev
	}
	inst.Block = nil
	inst.Prev = nil
	inst.Next = nil
	b.length--
}

// Len returns the number of instructions currently in b.
func (b *BasicBlock) Len() int { return b.length }

// First returns the block's first instruction, or nil if empty.
func (b *BasicBlock) First() *Instruction { return b.first }

// Instructions returns b's instructions in program order. It allocates a
// fresh slice on every call; callers in a hot loop should walk First/Next
// directly instead.
func (b *BasicBlock) Instructions() []*Instruction {
	out := make([]*Instruction, 0, b.length)
	for inst := b.first; inst != nil; inst = inst.Next {
		out = append(out, inst)
	}
	return out
}
