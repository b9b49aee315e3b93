package ir

import "testing"

func buildSimpleFunction() *Function {
	b := NewBuilder("add_one", I64)
	p := b.Param("x", I64)
	entry := b.Block("entry")
	one := b.Const(entry, "one", I64, 1)
	sum := b.Binary(entry, "sum", Add, p, one)
	b.Return(entry, sum)
	return b.Function()
}

func TestBuilderTracksUses(t *testing.T) {
	fn := buildSimpleFunction()
	entry := fn.Entry
	sum := entry.Instructions[1].Result()

	one := entry.Instructions[0].Result()
	if len(one.Uses) != 1 {
		t.Fatalf("expected one use of the const, got %d", len(one.Uses))
	}
	if one.Uses[0].User != entry.Instructions[1] {
		t.Fatalf("const's recorded use does not point at the binary instruction")
	}
	if len(sum.Uses) != 1 {
		t.Fatalf("expected one use of sum (the return), got %d", len(sum.Uses))
	}
}

func TestBuilderEntryIsFirstBlock(t *testing.T) {
	b := NewBuilder("f", I64)
	first := b.Block("first")
	b.Block("second")
	if b.Function().Entry != first {
		t.Fatalf("entry block should be the first block created")
	}
}

func TestReplaceAllUsesWith(t *testing.T) {
	fn := buildSimpleFunction()
	entry := fn.Entry
	sum := entry.Instructions[1].Result()

	replacement := &Value{ID: 99, Name: "folded", Type: I64}
	sum.ReplaceAllUsesWith(replacement)

	ret, ok := entry.Terminator.(*ReturnInst)
	if !ok {
		t.Fatalf("expected a return terminator")
	}
	if ret.Val != replacement {
		t.Fatalf("return should now reference the replacement value")
	}
	if len(sum.Uses) != 0 {
		t.Fatalf("original value's use list should be cleared after replacement")
	}
	if len(replacement.Uses) != 1 {
		t.Fatalf("replacement should have inherited exactly one use")
	}
}

func TestPhiArbitraryArity(t *testing.T) {
	b := NewBuilder("f", I64)
	entry := b.Block("entry")
	b1 := b.Block("b1")
	b2 := b.Block("b2")
	b3 := b.Block("b3")
	merge := b.Block("merge")

	cond := b.Param("cond", I1)
	b.CondBranch(entry, cond, b1, b2)
	v1 := b.Const(b1, "v1", I64, 1)
	b.Jump(b1, merge)
	v2 := b.Const(b2, "v2", I64, 2)
	b.Jump(b2, merge)
	v3 := b.Const(b3, "v3", I64, 3)
	b.Jump(b3, merge)

	phi := b.Phi(merge, "p", I64,
		PhiEdge{Pred: b1, Val: v1},
		PhiEdge{Pred: b2, Val: v2},
		PhiEdge{Pred: b3, Val: v3},
	)
	b.Return(merge, phi)

	phiInst := phi.Def.(*PhiInst)
	if len(phiInst.Incoming) != 3 {
		t.Fatalf("expected a 3-operand phi, got %d", len(phiInst.Incoming))
	}
}
