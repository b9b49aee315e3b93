package constprop

import (
	"constprop/internal/ir"
	"testing"
)

// A branch on a known-constant condition marks only the taken edge
// executable; a phi merging the two arms must resolve to the live arm's
// value even when the dead arm's value is a different constant.
func TestSCCPIgnoresUnreachableArmInPhi(t *testing.T) {
	b := ir.NewBuilder("f", ir.I64)
	entry := b.Block("entry")
	live := b.Block("live")
	dead := b.Block("dead")
	merge := b.Block("merge")

	cond := b.Const(entry, "cond", ir.I1, 1)
	b.CondBranch(entry, cond, live, dead)

	liveVal := b.Const(live, "live_val", ir.I64, 42)
	b.Jump(live, merge)

	deadVal := b.Const(dead, "dead_val", ir.I64, 99)
	b.Jump(dead, merge)

	phi := b.Phi(merge, "p", ir.I64,
		ir.PhiEdge{Pred: live, Val: liveVal},
		ir.PhiEdge{Pred: dead, Val: deadVal},
	)
	b.Return(merge, phi)
	fn := b.Function()

	changed := SCCP{}.Run(fn)
	if !changed {
		t.Fatalf("expected SCCP to fold the phi")
	}
	ret := merge.Terminator.(*ir.ReturnInst)
	imm, ok := ret.Val.IsLiteral()
	if !ok || imm != 42 {
		t.Fatalf("expected phi to resolve to the live arm's 42, got %v (literal=%v)", ret.Val, ok)
	}
}

// A known-constant branch folds a value directly in the taken arm, with no
// phi involved at all: the dead arm is never visited, so its own constant
// never enters the analysis.
func TestSCCPFoldsValueInTakenArmWithoutPhi(t *testing.T) {
	b := ir.NewBuilder("f", ir.I64)
	entry := b.Block("entry")
	live := b.Block("live")
	dead := b.Block("dead")

	cond := b.Const(entry, "cond", ir.I1, 1)
	b.CondBranch(entry, cond, live, dead)

	one := b.Const(live, "one", ir.I64, 1)
	two := b.Const(live, "two", ir.I64, 2)
	sum := b.Binary(live, "sum", ir.Add, one, two)
	b.Return(live, sum)

	ninety := b.Const(dead, "ninety", ir.I64, 90)
	b.Return(dead, ninety)
	fn := b.Function()

	changed := SCCP{}.Run(fn)
	if !changed {
		t.Fatalf("expected the live arm's addition to fold")
	}
	ret := live.Terminator.(*ir.ReturnInst)
	imm, ok := ret.Val.IsLiteral()
	if !ok || imm != 3 {
		t.Fatalf("expected the live arm to resolve to 3, got %v (literal=%v)", ret.Val, ok)
	}
}

// When both arms are reachable (branch condition not statically known),
// a phi merging two different constants must resolve to Bottom.
func TestSCCPBothArmsReachableMeetsToBottom(t *testing.T) {
	b := ir.NewBuilder("f", ir.I64)
	cond := b.Param("cond", ir.I1)
	entry := b.Block("entry")
	left := b.Block("left")
	right := b.Block("right")
	merge := b.Block("merge")

	b.CondBranch(entry, cond, left, right)
	lv := b.Const(left, "lv", ir.I64, 1)
	b.Jump(left, merge)
	rv := b.Const(right, "rv", ir.I64, 2)
	b.Jump(right, merge)

	phi := b.Phi(merge, "p", ir.I64,
		ir.PhiEdge{Pred: left, Val: lv},
		ir.PhiEdge{Pred: right, Val: rv},
	)
	b.Return(merge, phi)
	fn := b.Function()

	SCCP{}.Run(fn)
	ret := merge.Terminator.(*ir.ReturnInst)
	if _, ok := ret.Val.IsLiteral(); ok {
		t.Fatalf("phi over two reachable, differing constants must not fold")
	}
}

// An arithmetic chain entirely over constants folds end to end, including
// through a phi that only ever sees one executable incoming edge.
func TestSCCPFoldsConstantChainThroughPhi(t *testing.T) {
	b := ir.NewBuilder("f", ir.I64)
	entry := b.Block("entry")
	only := b.Block("only")
	merge := b.Block("merge")

	b.Jump(entry, only)
	a := b.Const(only, "a", ir.I64, 3)
	c := b.Const(only, "c", ir.I64, 4)
	sum := b.Binary(only, "sum", ir.Add, a, c)
	b.Jump(only, merge)

	phi := b.Phi(merge, "p", ir.I64, ir.PhiEdge{Pred: only, Val: sum})
	b.Return(merge, phi)
	fn := b.Function()

	changed := SCCP{}.Run(fn)
	if !changed {
		t.Fatalf("expected the whole chain to fold")
	}
	ret := merge.Terminator.(*ir.ReturnInst)
	imm, ok := ret.Val.IsLiteral()
	if !ok || imm != 7 {
		t.Fatalf("expected 7, got %v (literal=%v)", ret.Val, ok)
	}
}

// Running a pass twice must not change the function further: the first
// run's folded constants are already eligible==false (they are ConstInst),
// so nothing remains to rewrite.
func TestSCCPIdempotent(t *testing.T) {
	b := ir.NewBuilder("f", ir.I64)
	entry := b.Block("entry")
	x := b.Const(entry, "x", ir.I64, 5)
	y := b.Const(entry, "y", ir.I64, 6)
	z := b.Binary(entry, "z", ir.Add, x, y)
	b.Return(entry, z)
	fn := b.Function()

	first := SCCP{}.Run(fn)
	second := SCCP{}.Run(fn)
	if !first {
		t.Fatalf("first run should have folded the addition")
	}
	if second {
		t.Fatalf("second run should be a no-op once the function is fully folded")
	}
}
