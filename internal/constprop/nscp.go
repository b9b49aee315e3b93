package constprop

import (
	"constprop/internal/ir"
	"constprop/internal/passmgr"
)

// env is a block's IN or OUT environment: the lattice value NS-CP currently
// believes a tracked value holds. Values are keyed by *ir.Value identity,
// never by printed name, so two distinct allocas or registers that happen
// to share a textual name never collide.
type env map[*ir.Value]Lattice

func (e env) get(v *ir.Value) Lattice {
	if l, ok := e[v]; ok {
		return l
	}
	return BottomVal()
}

// outGet reads a key out of a predecessor's OUT environment for the
// purpose of a block-entry meet. Unlike get, an absent key defaults to
// Top, not Bottom: a predecessor whose OUT was never computed (its
// transfer never ran because every edge into it is pruned) has
// contributed no information yet, and Top is the meet identity — it must
// not drag a live predecessor's known constant down to Bottom.
func (e env) outGet(v *ir.Value) Lattice {
	if l, ok := e[v]; ok {
		return l
	}
	return TopVal()
}

func (e env) clone() env {
	out := make(env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// NSCP is the non-SSA constant propagation pass: a forward, block-granular
// dataflow analysis over stack-slot (alloca/load/store) form. Registers and
// stack slots share one environment keyed by value identity; a load's
// result tracks whatever was last stored into its address within the
// abstract environment, falling back to Bottom once a block merges two
// stores that disagree.
type NSCP struct{}

func (NSCP) Name() string { return "nscp" }

// Run iterates the block worklist to a fixed point, then rewrites every
// value the analysis proved constant. It reports whether the function was
// modified.
func (p NSCP) Run(fn *ir.Function) bool {
	out := p.analyze(fn)
	return rewrite(fn, p.collectConstants(fn, out))
}

// analyze computes OUT[b] for every reachable block, iterating until no
// block's OUT changes. IN is never stored between iterations — it is
// rebuilt fresh from predecessors' current OUT at the start of every
// visit, since stale IN can otherwise mask a predecessor's improvement.
func (p NSCP) analyze(fn *ir.Function) map[*ir.BasicBlock]env {
	out := make(map[*ir.BasicBlock]env, len(fn.Blocks))
	for _, b := range fn.Blocks {
		out[b] = env{}
	}
	if fn.Entry == nil {
		return out
	}

	// The entry block's IN has no predecessors to rebuild from, so it is
	// an empty environment; since get defaults an absent key to Bottom,
	// every value live at entry (stack slots, in particular) resolves to
	// Bottom, modeling "caller-supplied state is never a compile-time
	// constant" rather than an unsound Top.
	entrySeed := env{}

	worklist := []*ir.BasicBlock{fn.Entry}
	queued := map[*ir.BasicBlock]bool{fn.Entry: true}

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		queued[b] = false

		in := p.rebuildIn(b, out, entrySeed)
		newOut := p.transfer(b, in)

		if !envEqual(newOut, out[b]) {
			out[b] = newOut
			for _, succ := range p.liveSuccessors(b, newOut) {
				if !queued[succ] {
					queued[succ] = true
					worklist = append(worklist, succ)
				}
			}
		}
	}
	return out
}

// liveSuccessors reports which of b's CFG successors are worth enqueuing
// given b's final OUT environment: the successor of an unconditional
// jump, both successors of a branch on an unresolved condition, but only the taken
// successor when the branch condition has resolved to a concrete 0 or 1.
// A pruned successor's OUT is simply never computed, so it contributes no
// keys at all to a later meet rather than polluting it with Bottom.
func (p NSCP) liveSuccessors(b *ir.BasicBlock, out env) []*ir.BasicBlock {
	cb, ok := b.Terminator.(*ir.CondBranchInst)
	if !ok {
		return b.Succs
	}
	switch cond := p.resolve(out, cb.Cond); {
	case cond.IsConst() && cond.Val == 1:
		return []*ir.BasicBlock{cb.True}
	case cond.IsConst() && cond.Val == 0:
		return []*ir.BasicBlock{cb.False}
	default:
		return []*ir.BasicBlock{cb.True, cb.False}
	}
}

func (p NSCP) rebuildIn(b *ir.BasicBlock, out map[*ir.BasicBlock]env, entrySeed env) env {
	if len(b.Preds) == 0 {
		return entrySeed.clone()
	}
	in := env{}
	keys := map[*ir.Value]bool{}
	for _, pred := range b.Preds {
		for k := range out[pred] {
			keys[k] = true
		}
	}
	for k := range keys {
		l := TopVal()
		for _, pred := range b.Preds {
			l = Meet(l, out[pred].outGet(k))
		}
		in[k] = l
	}
	return in
}

// transfer applies b's instructions in order to in, producing the block's
// OUT environment. Stack slots are tracked exactly like registers: a
// Store's address is the key, and a Load resolves to whatever lattice
// value that key currently holds (Bottom if the slot was never stored in
// any predecessor path).
func (p NSCP) transfer(b *ir.BasicBlock, in env) env {
	cur := in.clone()
	for _, inst := range b.AllInstructions() {
		switch v := inst.(type) {
		case *ir.ConstInst:
			cur[v.Result()] = ConstVal(v.Imm)
		case *ir.AllocaInst:
			cur[v.Result()] = BottomVal()
		case *ir.StoreInst:
			cur[v.Addr] = p.resolve(cur, v.Val)
		case *ir.LoadInst:
			cur[v.Result()] = cur.get(v.Addr)
		case *ir.BinaryInst:
			cur[v.Result()] = evalBinary(v.Op, p.resolve(cur, v.Left), p.resolve(cur, v.Right))
		case *ir.CmpInst:
			cur[v.Result()] = evalCmp(v.Pred, p.resolve(cur, v.Left), p.resolve(cur, v.Right))
		}
	}
	return cur
}

// resolve reads a SSA-form operand's lattice value: literals resolve
// directly via IsLiteral, everything else consults the environment,
// falling back to Bottom for untracked values such as function parameters.
func (p NSCP) resolve(e env, v *ir.Value) Lattice {
	if imm, ok := v.IsLiteral(); ok {
		return ConstVal(imm)
	}
	return e.get(v)
}

// collectConstants re-runs the transfer function one more time per block
// using each block's final IN (derived from the fixed-point OUT map),
// yielding the resolved lattice value for every definition in the function.
// Doing this as a second, read-only pass keeps analyze's worklist loop
// free of the rewriter's concerns.
func (p NSCP) collectConstants(fn *ir.Function, out map[*ir.BasicBlock]env) map[*ir.Value]Lattice {
	entrySeed := env{}
	consts := map[*ir.Value]Lattice{}
	for _, b := range fn.Blocks {
		in := p.rebuildIn(b, out, entrySeed)
		cur := in.clone()
		for _, inst := range b.AllInstructions() {
			switch v := inst.(type) {
			case *ir.ConstInst:
				cur[v.Result()] = ConstVal(v.Imm)
			case *ir.AllocaInst:
				cur[v.Result()] = BottomVal()
			case *ir.StoreInst:
				cur[v.Addr] = p.resolve(cur, v.Val)
			case *ir.LoadInst:
				val := cur.get(v.Addr)
				cur[v.Result()] = val
				consts[v.Result()] = val
			case *ir.BinaryInst:
				val := evalBinary(v.Op, p.resolve(cur, v.Left), p.resolve(cur, v.Right))
				cur[v.Result()] = val
				consts[v.Result()] = val
			case *ir.CmpInst:
				val := evalCmp(v.Pred, p.resolve(cur, v.Left), p.resolve(cur, v.Right))
				cur[v.Result()] = val
				consts[v.Result()] = val
			}
		}
	}
	return consts
}

func envEqual(a, b env) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || bv != v {
			return false
		}
	}
	return true
}

func init() {
	passmgr.Register("nscp", NSCP{})
}
