package ir

import "fmt"

// Package ir is the IR container the constant-propagation passes consume:
// a typed, register-based, SSA-capable intermediate representation with
// explicit basic blocks and a control-flow graph. It owns no optimization
// logic of its own — see internal/constprop for that.

// Type is the minimal scalar type system the passes care about: sized
// integers and booleans. Pointers (alloca results) carry no further
// structure since NS-CP never dereferences through one beyond a single
// load/store.
type Type interface {
	String() string
}

// IntType is a signed integer of the given bit width.
type IntType struct {
	Bits int
}

func (t *IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }

// BoolType is the i1 subdomain used by compare results and branch conditions.
type BoolType struct{}

func (t *BoolType) String() string { return "i1" }

// PtrType is the type of an alloca's result: an addressable stack slot.
type PtrType struct {
	Elem Type
}

func (t *PtrType) String() string { return t.Elem.String() + "*" }

var I64 Type = &IntType{Bits: 64}
var I1 Type = &BoolType{}

// Use records one occurrence of a Value as an operand of User. Use chains
// let the rewriter replace every occurrence of a value in O(len(Uses))
// instead of walking the whole function.
type Use struct {
	Value *Value
	User  Instruction
}

// Value is an SSA definition: the result of exactly one instruction, or a
// function parameter with no defining instruction. Identity is the *Value
// pointer itself: lattice maps key off this handle rather than any
// textual/printed name, which exists purely for diagnostics.
type Value struct {
	ID   int
	Name string
	Type Type
	Def  Instruction // nil for parameters
	Uses []*Use
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	return "%" + v.Name
}

// AddUse appends u to v's use list. Exported so callers assembling
// instructions outside a Builder (internal/irasm's loader, in particular)
// can keep def-use chains accurate without reaching into package-private
// bookkeeping.
func (v *Value) AddUse(u *Use) {
	v.Uses = append(v.Uses, u)
}

// ReplaceAllUsesWith rewrites every recorded use of v to refer to newVal
// instead, mutating each user instruction's operand in place. v's own use
// list is cleared; newVal inherits the transferred uses.
func (v *Value) ReplaceAllUsesWith(newVal *Value) {
	for _, u := range v.Uses {
		u.User.ReplaceOperand(v, newVal)
		u.Value = newVal
		newVal.Uses = append(newVal.Uses, u)
	}
	v.Uses = nil
}

// IsLiteral reports whether v is a compile-time integer literal, i.e. the
// result of a ConstInst. Operand resolution in both passes treats this as
// ground truth rather than consulting any lattice map.
func (v *Value) IsLiteral() (int64, bool) {
	if v == nil {
		return 0, false
	}
	if c, ok := v.Def.(*ConstInst); ok {
		return c.Imm, true
	}
	return 0, false
}
