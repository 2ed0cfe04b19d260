package ir

// Builder is the out-of-scope "IR builder, IR data model, and instruction
// class hierarchy" collaborator, exposed only at the read/mutate interface
// spec.md §6.2 lists. pkg/outline depends on this interface, not on the
// concrete Module/Function/BasicBlock/Instruction types directly, so a
// real VM's own IR could satisfy it without adopting this package's types
// wholesale.
type Builder interface {
	// CreateFunction creates a new function in module, named name, with the
	// given strict-mode flag. If insertBefore is non-nil the function is
	// placed immediately before it; otherwise it is appended at module end.
	CreateFunction(module *Module, name string, strict bool, insertBefore *Function) *Function

	// CreateBasicBlock appends a new empty block to fn.
	CreateBasicBlock(fn *Function) *BasicBlock

	// CreateParameter appends a new named parameter to fn.
	CreateParameter(fn *Function, name string) *Parameter

	// CloneInstruction creates a detached copy of template with operands
	// replaced wholesale by operands.
	CloneInstruction(template *Instruction, operands []Value) *Instruction

	// AppendInstruction appends inst to the end of block.
	AppendInstruction(block *BasicBlock, inst *Instruction)

	// InsertInstructionBefore splices inst into mark's block immediately
	// before mark.
	InsertInstructionBefore(mark, inst *Instruction)

	// UndefinedLiteral returns module's interned undefined literal.
	UndefinedLiteral(module *Module) *Literal

	// CreateDirectCall builds a direct-call instruction targeting fn with
	// the given receiver and arguments. It is left detached; the caller
	// places it with InsertInstructionBefore or AppendInstruction.
	CreateDirectCall(fn *Function, receiver Value, args []Value) *Instruction

	// ReplaceAllUses rewrites every current user of old to refer to
	// replacement instead.
	ReplaceAllUses(old *Instruction, replacement Value)

	// EraseInstruction unlinks inst from its block. Panics (as an
	// InvariantError) if inst still has users.
	EraseInstruction(inst *Instruction)
}

// DefaultBuilder is the reference Builder, operating directly on this
// package's Module/Function/BasicBlock/Instruction types.
type DefaultBuilder struct{}

var _ Builder = DefaultBuilder{}

func (DefaultBuilder) CreateFunction(module *Module, name string, strict bool, insertBefore *Function) *Function {
	uniqueName := module.UniqueName(name)
	return module.InsertFunctionBefore(insertBefore, uniqueName, strict)
}

func (DefaultBuilder) CreateBasicBlock(fn *Function) *BasicBlock { return fn.AddBlock() }

func (DefaultBuilder) CreateParameter(fn *Function, name string) *Parameter {
	return fn.AddParameter(name)
}

func (DefaultBuilder) CloneInstruction(template *Instruction, operands []Value) *Instruction {
	return NewInstruction(template.Variety, operands...)
}

func (DefaultBuilder) AppendInstruction(block *BasicBlock, inst *Instruction) {
	block.Append(inst)
}

func (DefaultBuilder) InsertInstructionBefore(mark, inst *Instruction) {
	mark.Block.InsertBefore(mark, inst)
}

func (DefaultBuilder) UndefinedLiteral(module *Module) *Literal { return module.UndefinedLiteral() }

func (DefaultBuilder) CreateDirectCall(fn *Function, receiver Value, args []Value) *Instruction {
	operands := make([]Value, 0, len(args)+2)
	operands = append(operands, moduleFunctionValue{fn}, receiver)
	operands = append(operands, args...)
	return NewInstruction(DirectCall, operands...)
}

func (DefaultBuilder) ReplaceAllUses(old *Instruction, replacement Value) {
	old.ReplaceAllUses(replacement)
}

func (DefaultBuilder) EraseInstruction(inst *Instruction) { inst.Erase() }

// moduleFunctionValue wraps a callee *Function as an ir.Value so it can
// occupy a DirectCall instruction's first operand slot without Function
// itself having to satisfy Value (a function is not a value producible by
// another instruction in this model, only a static callee reference).
type moduleFunctionValue struct {
	Function *Function
}

func (moduleFunctionValue) isValue() {}

// CalleeOf returns the function a DirectCall instruction targets, or nil if
// inst is not a DirectCall built by CreateDirectCall.
func CalleeOf(inst *Instruction) *Function {
	if inst.Variety != DirectCall || len(inst.Operands) == 0 {
		return nil
	}
	if callee, ok := inst.Operands[0].(moduleFunctionValue); ok {
		return callee.Function
	}
	return nil
}

// ReceiverOf returns a DirectCall instruction's receiver operand.
func ReceiverOf(inst *Instruction) Value {
	if inst.Variety != DirectCall || len(inst.Operands) < 2 {
		return nil
	}
	return inst.Operands[1]
}

// ArgsOf returns a DirectCall instruction's argument operands.
func ArgsOf(inst *Instruction) []Value {
	if inst.Variety != DirectCall || len(inst.Operands) < 2 {
		return nil
	}
	return inst.Operands[2:]
}
