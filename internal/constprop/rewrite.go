package constprop

import "constprop/internal/ir"

// rewrite materializes a fresh ir.ConstInst for every definition resolved to
// a concrete constant in consts, redirects its uses to the new constant via
// Value.ReplaceAllUsesWith, and erases the original instruction. It reports
// whether it changed anything. Shared by NSCP and SCCP so the two passes can
// never disagree on what is eligible to fold.
func rewrite(fn *ir.Function, consts map[*ir.Value]Lattice) bool {
	changed := false
	for _, b := range fn.Blocks {
		kept := b.Instructions[:0:0]
		for _, inst := range b.Instructions {
			result := inst.Result()
			if result == nil || !eligible(inst) {
				kept = append(kept, inst)
				continue
			}
			lat, ok := consts[result]
			if !ok || !lat.IsConst() {
				kept = append(kept, inst)
				continue
			}
			newInst, newVal := materialize(b, result, lat.Val)
			result.ReplaceAllUsesWith(newVal)
			kept = append(kept, newInst)
			changed = true
		}
		b.Instructions = kept
	}
	return changed
}

// eligible reports whether inst's result may be replaced by a folded
// constant. Compares are excluded: a compare's Bottom/Top-tainted result
// still needs its own identity for branch handling. Stores have no result
// value (Result() is nil), and an alloca's result is a stack-slot address
// rather than a scalar, so neither is ever replaced by a constant.
func eligible(inst ir.Instruction) bool {
	switch inst.(type) {
	case *ir.CmpInst, *ir.StoreInst, *ir.AllocaInst, *ir.ConstInst:
		return false
	default:
		return true
	}
}

// materialize builds a standalone ConstInst carrying imm, typed and named
// after the value it replaces. The caller is responsible for placing it in
// the block's instruction list; since it replaces a definition that was
// already in that block, the original's position is where it belongs.
func materialize(b *ir.BasicBlock, original *ir.Value, imm int64) (ir.Instruction, *ir.Value) {
	result := &ir.Value{ID: original.ID, Name: original.Name, Type: original.Type}
	inst := ir.NewConst(original.ID, result, imm)
	inst.SetBlock(b)
	return inst, result
}
