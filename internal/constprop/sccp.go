package constprop

import (
	"fmt"

	"constprop/internal/ir"
	"constprop/internal/passmgr"
)

// cfgEdge names one directed control-flow edge. The zero-value From (nil)
// denotes the virtual edge SCCP seeds the worklist with to mark the entry
// block reachable before any real predecessor exists.
type cfgEdge struct {
	From *ir.BasicBlock
	To   *ir.BasicBlock
}

// SCCP is the sparse conditional constant propagation pass (Wegman-Zadeck)
// over SSA-form functions. Unlike NSCP it tracks one lattice value per
// definition rather than per block, and only ever visits an instruction
// when something it actually depends on changes: a newly-executable edge
// into its block, or a new lattice value for one of its operands.
type SCCP struct {
	// Debug, when set, receives one line per edge/instruction visit. Left
	// nil in production; wired up by cmd/constprop-cli's -trace flag.
	Debug func(string)
}

func (SCCP) Name() string { return "sccp" }

func (s SCCP) trace(format string, args ...interface{}) {
	if s.Debug != nil {
		s.Debug(fmt.Sprintf(format, args...))
	}
}

func (s SCCP) Run(fn *ir.Function) bool {
	lat := map[*ir.Value]Lattice{}
	for _, param := range fn.Params {
		lat[param] = BottomVal()
	}

	exec := map[cfgEdge]bool{}
	visits := map[*ir.BasicBlock]int{}
	var fwl []cfgEdge
	var swl []*ir.Value

	getLat := func(v *ir.Value) Lattice {
		if imm, ok := v.IsLiteral(); ok {
			return ConstVal(imm)
		}
		if l, ok := lat[v]; ok {
			return l
		}
		return TopVal()
	}

	setLat := func(v *ir.Value, l Lattice) {
		if old, ok := lat[v]; ok && old == l {
			return
		}
		lat[v] = l
		swl = append(swl, v)
	}

	// blockExecutable reports whether any edge into b (or, for the entry
	// block, the virtual seed edge) has been marked executable.
	blockExecutable := func(b *ir.BasicBlock) bool {
		return visits[b] > 0
	}

	markEdgeExec := func(from, to *ir.BasicBlock) {
		e := cfgEdge{From: from, To: to}
		if exec[e] {
			return
		}
		exec[e] = true
		fwl = append(fwl, e)
	}

	// visitPhi meets only over the incoming pairs whose specific
	// (pred, phi-block) edge is executable — the direct-edge-check
	// equivalent of a reachability BFS from entry, since exec edges are
	// only ever marked by forward propagation starting at the entry edge.
	visitPhi := func(phi *ir.PhiInst) {
		result := phi.Result()
		l := TopVal()
		for _, pe := range phi.Incoming {
			if exec[cfgEdge{From: pe.Pred, To: phi.Block()}] {
				l = Meet(l, getLat(pe.Val))
			}
		}
		setLat(result, l)
	}

	var visitInst func(inst ir.Instruction)
	visitInst = func(inst ir.Instruction) {
		s.trace("visit %s", inst)
		switch v := inst.(type) {
		case *ir.PhiInst:
			visitPhi(v)
		case *ir.ConstInst:
			setLat(v.Result(), ConstVal(v.Imm))
		case *ir.BinaryInst:
			setLat(v.Result(), evalBinary(v.Op, getLat(v.Left), getLat(v.Right)))
		case *ir.CmpInst:
			setLat(v.Result(), evalCmp(v.Pred, getLat(v.Left), getLat(v.Right)))
		case *ir.LoadInst:
			// SCCP assumes SSA form (memory already promoted to phis);
			// any load that still reaches this pass is conservatively
			// non-constant.
			setLat(v.Result(), BottomVal())
		case *ir.CondBranchInst:
			cond := getLat(v.Cond)
			switch {
			case cond.IsTop():
				// Neither branch provably taken yet; wait for Cond to
				// resolve further before committing to an edge.
			case cond.IsConst():
				if cond.Val != 0 {
					markEdgeExec(v.Block(), v.True)
				} else {
					markEdgeExec(v.Block(), v.False)
				}
			default: // Bottom or UndefCmp: either successor is reachable
				markEdgeExec(v.Block(), v.True)
				markEdgeExec(v.Block(), v.False)
			}
		case *ir.JumpInst:
			markEdgeExec(v.Block(), v.Target)
		}
	}

	entrySeed := cfgEdge{From: nil, To: fn.Entry}
	exec[entrySeed] = true
	fwl = append(fwl, entrySeed)

	for len(fwl) > 0 || len(swl) > 0 {
		for len(fwl) > 0 {
			e := fwl[0]
			fwl = fwl[1:]
			s.trace("edge %s -> %s executable", edgeLabel(e.From), e.To.Label)
			if visits[e.To] == 0 {
				visits[e.To] = 1
				for _, inst := range e.To.AllInstructions() {
					visitInst(inst)
				}
			} else {
				for _, inst := range e.To.Instructions {
					if phi, ok := inst.(*ir.PhiInst); ok {
						visitPhi(phi)
					}
				}
			}
		}
		for len(swl) > 0 {
			v := swl[0]
			swl = swl[1:]
			for _, use := range v.Uses {
				if blockExecutable(use.User.Block()) {
					visitInst(use.User)
				}
			}
		}
	}

	consts := map[*ir.Value]Lattice{}
	for v, l := range lat {
		if l.IsConst() {
			consts[v] = l
		}
	}
	return rewrite(fn, consts)
}

func edgeLabel(b *ir.BasicBlock) string {
	if b == nil {
		return "<start>"
	}
	return b.Label
}

func init() {
	passmgr.Register("sccp", SCCP{})
}
