package ir

// Builder constructs a Function instruction by instruction, maintaining
// identity allocation and def-use chains as it goes. It is the
// programmatic counterpart to internal/irasm's textual assembler — tests
// build through it, and the assembler uses this file's Emit/CloseBlock,
// so both funnel through RecordUse and use-chain bookkeeping lives in
// exactly one place.
type Builder struct {
	fn     *Function
	nextID int
}

// NewBuilder starts building a function with the given name and return
// type. Parameters are declared afterwards with Param.
func NewBuilder(name string, returnType Type) *Builder {
	return &Builder{fn: &Function{Name: name, ReturnType: returnType}}
}

func (b *Builder) Function() *Function { return b.fn }

func (b *Builder) id() int {
	b.nextID++
	return b.nextID
}

// Param declares a function parameter and returns its Value.
func (b *Builder) Param(name string, t Type) *Value {
	v := &Value{ID: b.id(), Name: name, Type: t}
	b.fn.Params = append(b.fn.Params, v)
	return v
}

// Block creates a new, empty basic block and appends it to the function.
// The first block created becomes the entry block.
func (b *Builder) Block(label string) *BasicBlock {
	blk := &BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	if b.fn.Entry == nil {
		b.fn.Entry = blk
	}
	return blk
}

// RecordUse appends inst to each of its operands' use chains. Builder-issued
// instructions always go through this so Value.Uses stays accurate for the
// rewriter without every call site remembering to do it; exported so
// internal/irasm's loader, which builds instructions directly rather than
// through a Builder, can maintain the same invariant.
func RecordUse(inst Instruction) {
	for _, operand := range inst.Operands() {
		if operand == nil {
			continue
		}
		operand.AddUse(&Use{Value: operand, User: inst})
	}
}

// Emit appends inst to blk's body, setting its owning block and recording
// its operand uses. For assembling instructions outside a Builder.
func Emit(blk *BasicBlock, inst Instruction) {
	inst.SetBlock(blk)
	RecordUse(inst)
	blk.Instructions = append(blk.Instructions, inst)
}

// CloseBlock sets term as blk's terminator, recording its operand uses and
// wiring the CFG edges to its successors.
func CloseBlock(blk *BasicBlock, term Terminator) {
	term.SetBlock(blk)
	RecordUse(term)
	blk.Terminator = term
	for _, succ := range term.Successors() {
		if succ == nil {
			continue
		}
		linkSuccessor(blk, succ)
	}
}

func (b *Builder) emit(blk *BasicBlock, inst Instruction) {
	inst.SetBlock(blk)
	RecordUse(inst)
	blk.Instructions = append(blk.Instructions, inst)
}

// Alloca introduces a stack slot of type elem, returning its address value.
func (b *Builder) Alloca(blk *BasicBlock, name string, elem Type) *Value {
	result := &Value{ID: b.id(), Name: name, Type: &PtrType{Elem: elem}}
	inst := &AllocaInst{id: b.id(), result: result, Elem: elem}
	result.Def = inst
	b.emit(blk, inst)
	return result
}

// Load reads the current value stored at addr.
func (b *Builder) Load(blk *BasicBlock, name string, addr *Value) *Value {
	var elem Type = I64
	if pt, ok := addr.Type.(*PtrType); ok {
		elem = pt.Elem
	}
	result := &Value{ID: b.id(), Name: name, Type: elem}
	inst := &LoadInst{id: b.id(), result: result, Addr: addr}
	result.Def = inst
	b.emit(blk, inst)
	return result
}

// Store writes val into the slot addressed by addr.
func (b *Builder) Store(blk *BasicBlock, addr, val *Value) {
	inst := &StoreInst{id: b.id(), Addr: addr, Val: val}
	b.emit(blk, inst)
}

// Binary emits one of add/sub/mul/sdiv.
func (b *Builder) Binary(blk *BasicBlock, name string, op BinOp, left, right *Value) *Value {
	result := &Value{ID: b.id(), Name: name, Type: left.Type}
	inst := &BinaryInst{id: b.id(), result: result, Op: op, Left: left, Right: right}
	result.Def = inst
	b.emit(blk, inst)
	return result
}

// Cmp emits a signed integer compare, result typed i1.
func (b *Builder) Cmp(blk *BasicBlock, name string, pred CmpPred, left, right *Value) *Value {
	result := &Value{ID: b.id(), Name: name, Type: I1}
	inst := &CmpInst{id: b.id(), result: result, Pred: pred, Left: left, Right: right}
	result.Def = inst
	b.emit(blk, inst)
	return result
}

// Const materializes an integer literal of type t.
func (b *Builder) Const(blk *BasicBlock, name string, t Type, imm int64) *Value {
	result := &Value{ID: b.id(), Name: name, Type: t}
	inst := &ConstInst{id: b.id(), result: result, Imm: imm}
	result.Def = inst
	b.emit(blk, inst)
	return result
}

// Phi emits an SSA merge over the given incoming (predecessor, value)
// pairs. Phis must be emitted before any non-phi instruction in blk.
func (b *Builder) Phi(blk *BasicBlock, name string, t Type, incoming ...PhiEdge) *Value {
	result := &Value{ID: b.id(), Name: name, Type: t}
	inst := &PhiInst{id: b.id(), result: result, Incoming: incoming}
	result.Def = inst
	b.emit(blk, inst)
	return result
}

// linkSuccessor wires blk -> succ on both sides of the CFG.
func linkSuccessor(blk, succ *BasicBlock) {
	blk.Succs = append(blk.Succs, succ)
	succ.Preds = append(succ.Preds, blk)
}

// CondBranch closes blk with a conditional terminator.
func (b *Builder) CondBranch(blk *BasicBlock, cond *Value, trueBlk, falseBlk *BasicBlock) {
	inst := &CondBranchInst{id: b.id(), Cond: cond, True: trueBlk, False: falseBlk}
	inst.SetBlock(blk)
	RecordUse(inst)
	blk.Terminator = inst
	linkSuccessor(blk, trueBlk)
	linkSuccessor(blk, falseBlk)
}

// Jump closes blk with an unconditional terminator.
func (b *Builder) Jump(blk *BasicBlock, target *BasicBlock) {
	inst := &JumpInst{id: b.id(), Target: target}
	inst.SetBlock(blk)
	blk.Terminator = inst
	linkSuccessor(blk, target)
}

// Return closes blk with a return terminator. val may be nil for void.
func (b *Builder) Return(blk *BasicBlock, val *Value) {
	inst := &ReturnInst{id: b.id(), Val: val}
	inst.SetBlock(blk)
	RecordUse(inst)
	blk.Terminator = inst
}
