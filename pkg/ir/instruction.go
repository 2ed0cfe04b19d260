package ir

// Instruction is an opaque IR node: a variety discriminator, an ordered
// operand list, a parent block, and intrusive prev/next linkage within that
// block (spec.md §3.2). It is itself a Value, since most varieties produce
// a result other instructions can consume.
type Instruction struct {
	Variety  Variety
	Operands []Value

	Block      *BasicBlock
	Prev, Next *Instruction

	users []*Instruction
}

func (*Instruction) isValue() {}

// NewInstruction builds a detached instruction, registering it as a user of
// every instruction-valued operand it carries. It is not linked into any
// block until BasicBlock.Append or BasicBlock.InsertBefore places it.
func NewInstruction(variety Variety, operands ...Value) *Instruction {
	inst := &Instruction{Variety: variety, Operands: append([]Value(nil), operands...)}
	for _, op := range operands {
		if producer, ok := op.(*Instruction); ok {
			producer.addUser(inst)
		}
	}
	return inst
}

func (i *Instruction) addUser(user *Instruction) {
	i.users = append(i.users, user)
}

func (i *Instruction) removeUser(user *Instruction) {
	for idx, u := range i.users {
		if u == user {
			i.users = append(i.users[:idx], i.users[idx+1:]...)
			return
		}
	}
}

// Users returns the instructions that consume i's result. The caller must
// not mutate the returned slice.
func (i *Instruction) Users() []*Instruction { return i.users }

// NumUsers reports how many instructions consume i's result.
func (i *Instruction) NumUsers() int { return len(i.users) }

// ReplaceAllUses rewrites every operand slot across every current user of i
// so that it refers to replacement instead, per the IR Builder Interface's
// replace-all-uses operation (spec.md §6.2). It also moves the use
// bookkeeping: i.users is left empty and, when replacement is an
// instruction, it accumulates i's former users.
func (i *Instruction) ReplaceAllUses(replacement Value) {
	if len(i.users) == 0 {
		return
	}
	replacementInst, replacementIsInst := replacement.(*Instruction)
	for _, user := range i.users {
		for idx, operand := range user.Operands {
			if operand == Value(i) {
				user.Operands[idx] = replacement
				if replacementIsInst {
					replacementInst.addUser(user)
				}
			}
		}
	}
	i.users = nil
}

// Erase unlinks i from its block. The caller must ensure i.NumUsers() == 0
// first; erasing an instruction with remaining users is an invariant
// violation per spec.md §7 ("erase of an instruction with remaining users").
func (i *Instruction) Erase() {
	if i.NumUsers() != 0 {
		panic(&InvariantError{msg: "ir: erase of instruction with remaining users"})
	}
	for _, op := range i.Operands {
		if producer, ok := op.(*Instruction); ok {
			producer.removeUser(i)
		}
	}
	if i.Block != nil {
		i.Block.unlink(i)
	}
}

// InvariantError reports a violated IR structural invariant, mirroring
// hiddenclass.InvariantError's role for the property-graph side of this
// module (spec.md §7).
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string { return e.msg }
