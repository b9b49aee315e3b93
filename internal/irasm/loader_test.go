package irasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constprop/internal/constprop"
	"constprop/internal/ir"
)

const straightLineSrc = `
function add_const(%p: i64) -> i64 {
entry:
  %one = const 1
  %sum = add %p, %one
  ret %sum
}
`

func TestLoadStringParsesStraightLineFunction(t *testing.T) {
	fns, err := LoadString("straight_line", straightLineSrc)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	assert.Equal(t, "add_const", fn.Name)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "p", fn.Params[0].Name)
	require.NotNil(t, fn.Entry)
	assert.Equal(t, "entry", fn.Entry.Label)
	assert.Len(t, fn.Entry.Instructions, 2)
}

const branchingSrc = `
function pick(%cond: i1) -> i64 {
entry:
  br %cond, live, dead
live:
  %a = const 10
  jmp merge
dead:
  %b = const 20
  jmp merge
merge:
  %p = phi [%a, live], [%b, dead]
  ret %p
}
`

func TestLoadStringResolvesForwardBlockReferences(t *testing.T) {
	fns, err := LoadString("branching", branchingSrc)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	require.Len(t, fn.Blocks, 4)
	merge := fn.Blocks[3]
	assert.Equal(t, "merge", merge.Label)
	require.Len(t, merge.Instructions, 1)
	phi, ok := merge.Instructions[0].(*ir.PhiInst)
	require.True(t, ok)
	assert.Len(t, phi.Incoming, 2)
}

func TestLoadedFunctionRunsThroughSCCP(t *testing.T) {
	fns, err := LoadString("branching", branchingSrc)
	require.NoError(t, err)
	fn := fns[0]

	changed := constprop.SCCP{}.Run(fn)
	assert.False(t, changed, "both arms are reachable through a non-constant condition, so the phi can't fold")

	merge := fn.Blocks[3]
	phiResult := merge.Instructions[0].Result()
	_, isLiteral := phiResult.IsLiteral()
	assert.False(t, isLiteral, "branch depends on a non-constant parameter, so the phi must stay unresolved")
}

func TestLoadStringRejectsUndefinedBlock(t *testing.T) {
	_, err := LoadString("bad", `
function f() -> i64 {
entry:
  jmp nowhere
}
`)
	require.Error(t, err)
}

func TestLoadStringRejectsUndefinedRegister(t *testing.T) {
	_, err := LoadString("bad", `
function f() -> i64 {
entry:
  ret %missing
}
`)
	require.Error(t, err)
}
