// Package constprop implements the two constant-propagation passes: NS-CP,
// a block-granular dataflow pass over stack-slot form, and SCCP, a
// Wegman-Zadeck sparse conditional constant propagation pass over SSA form.
// Both share the three-point lattice and the rewriter defined in this
// package.
package constprop

import (
	"fmt"

	"constprop/internal/ir"
)

// Tag names a lattice's position: Top (nothing known yet), Const (exactly
// one known value), or Bottom (provably non-constant). UndefCmp is a fourth
// sentinel reserved for i1-typed compare results fed by a Bottom or Top
// operand, kept distinct from Bottom for diagnostics even though it
// behaves identically to Bottom everywhere else.
type Tag int

const (
	Top Tag = iota
	Const
	Bottom
	UndefCmp
)

func (t Tag) String() string {
	switch t {
	case Top:
		return "⊤"
	case Const:
		return "const"
	case Bottom:
		return "⊥"
	case UndefCmp:
		return "undef-cmp"
	default:
		return "?tag"
	}
}

// Lattice is one point in the three-point (plus UndefCmp) domain: Top <
// Const(v) < Bottom, ordered so Meet only ever moves right, never left.
type Lattice struct {
	Tag Tag
	Val int64 // meaningful only when Tag == Const
}

func TopVal() Lattice      { return Lattice{Tag: Top} }
func BottomVal() Lattice   { return Lattice{Tag: Bottom} }
func UndefCmpVal() Lattice { return Lattice{Tag: UndefCmp} }
func ConstVal(v int64) Lattice {
	return Lattice{Tag: Const, Val: v}
}

func (l Lattice) IsTop() bool      { return l.Tag == Top }
func (l Lattice) IsBottom() bool   { return l.Tag == Bottom || l.Tag == UndefCmp }
func (l Lattice) IsConst() bool    { return l.Tag == Const }

func (l Lattice) String() string {
	if l.Tag == Const {
		return fmt.Sprintf("const(%d)", l.Val)
	}
	return l.Tag.String()
}

// Meet computes the greatest lower bound of a and b. It is commutative,
// associative and idempotent; repeated application never ascends the
// lattice (Bottom meet anything is Bottom, Top meet x is x, Const(a) meet
// Const(b) is Const(a) when equal and Bottom otherwise).
func Meet(a, b Lattice) Lattice {
	if a.IsBottom() || b.IsBottom() {
		return BottomVal()
	}
	if a.IsTop() {
		return b
	}
	if b.IsTop() {
		return a
	}
	// both Const
	if a.Val == b.Val {
		return a
	}
	return BottomVal()
}

// evalBinary applies op to two operand lattice values, shared by NSCP and
// SCCP: Bottom dominates, then Top (if neither operand is Bottom, an
// unresolved operand keeps the result unresolved too), then a concrete
// arithmetic result. Division by a known zero divisor is treated as
// non-constant rather than propagating a faulted value.
func evalBinary(op ir.BinOp, a, b Lattice) Lattice {
	if a.IsBottom() || b.IsBottom() {
		return BottomVal()
	}
	if a.IsTop() || b.IsTop() {
		return TopVal()
	}
	switch op {
	case ir.Add:
		return ConstVal(a.Val + b.Val)
	case ir.Sub:
		return ConstVal(a.Val - b.Val)
	case ir.Mul:
		return ConstVal(a.Val * b.Val)
	case ir.SDiv:
		if b.Val == 0 {
			return BottomVal()
		}
		return ConstVal(a.Val / b.Val)
	default:
		return BottomVal()
	}
}

// evalCmp applies pred to two operand lattice values. A Bottom operand
// yields UndefCmp rather than a concrete 0/1; UndefCmp is still safe to use
// as a branch condition, since it is treated identically to Bottom
// everywhere except diagnostics. A Top operand keeps the result Top, same
// as evalBinary, so neither operand being resolved yet doesn't prematurely
// collapse the comparison to non-constant.
func evalCmp(pred ir.CmpPred, a, b Lattice) Lattice {
	if a.IsBottom() || b.IsBottom() {
		return UndefCmpVal()
	}
	if a.IsTop() || b.IsTop() {
		return TopVal()
	}
	if pred.Eval(a.Val, b.Val) {
		return ConstVal(1)
	}
	return ConstVal(0)
}
