// Package irasm is the textual loader: a participle/v2 grammar for the IR
// assembly form internal/ir.Print emits, and a builder that turns a parsed
// file back into *ir.Function values. It exists so test fixtures and the
// CLI's input files can be written by hand instead of only programmatically
// through ir.Builder.
package irasm

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	cperrors "constprop/internal/errors"
	"constprop/internal/ir"
)

var parser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// LoadFile parses path and lowers every function it declares.
func LoadFile(path string) ([]*ir.Function, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("irasm: read %s: %w", path, err)
	}
	return LoadString(path, string(source))
}

// LoadString parses src (labeled name for diagnostics) and lowers every
// function it declares.
func LoadString(name, src string) ([]*ir.Function, error) {
	file, err := parser.ParseString(name, src)
	if err != nil {
		reportParseError(name, src, err)
		return nil, err
	}
	l := &loader{name: name, src: src}
	fns := make([]*ir.Function, 0, len(file.Functions))
	for _, decl := range file.Functions {
		fn, err := l.lowerFunction(decl)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// reportParseError prints a caret-style syntax error via the shared
// diagnostic reporter.
func reportParseError(name, src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		fmt.Fprintf(os.Stderr, "irasm: unexpected error: %s\n", err)
		return
	}
	pos := pe.Position()
	reporter := cperrors.NewErrorReporter(name, src)
	fmt.Fprint(os.Stderr, reporter.FormatError(cperrors.CompilerError{
		Level:    cperrors.Error,
		Code:     cperrors.ErrorSyntax,
		Message:  pe.Message(),
		Position: cperrors.Position{Line: pos.Line, Column: pos.Column},
		Length:   1,
	}))
}

// loader carries the one piece of state lowering's diagnostics need beyond
// what lowerFunction's locals already track: the source text and its label,
// so an undefined-block or undefined-register error can be rendered through
// the same caret-annotated reporter the parser itself uses.
type loader struct {
	name string
	src  string
}

// reportLoweringError formats and prints a post-parse diagnostic at pos,
// then returns an error for the caller to propagate and exit on. Printing
// here (rather than leaving it to main) keeps every irasm diagnostic —
// syntax or lowering — going through the one reporter.
func (l *loader) reportLoweringError(pos lexer.Position, code, message string, length int, suggestions ...cperrors.Suggestion) error {
	reporter := cperrors.NewErrorReporter(l.name, l.src)
	fmt.Fprint(os.Stderr, reporter.FormatError(cperrors.CompilerError{
		Level:       cperrors.Error,
		Code:        code,
		Message:     message,
		Position:    cperrors.Position{Line: pos.Line, Column: pos.Column},
		Length:      length,
		Suggestions: suggestions,
	}))
	return fmt.Errorf("irasm: %s", message)
}

func typeOf(ref *TypeRef) ir.Type {
	if ref != nil && ref.Name == "i1" {
		return ir.I1
	}
	return ir.I64
}

// lowerFunction builds one *ir.Function from its parsed declaration. Blocks
// and every instruction's result register are pre-declared before any
// operand is resolved so forward references — a phi in a loop header
// naming a value defined later in the loop body — work regardless of
// source order.
func (l *loader) lowerFunction(decl *FunctionDecl) (*ir.Function, error) {
	fn := &ir.Function{Name: decl.Name, ReturnType: typeOf(decl.Return)}
	regs := map[string]*ir.Value{}
	blocks := map[string]*ir.BasicBlock{}
	nextID := 0
	id := func() int {
		nextID++
		return nextID
	}

	for _, p := range decl.Params {
		v := &ir.Value{ID: id(), Name: strings.TrimPrefix(p.Name, "%"), Type: typeOf(p.Type)}
		fn.Params = append(fn.Params, v)
		regs[p.Name] = v
	}

	for i, b := range decl.Blocks {
		blk := &ir.BasicBlock{Label: b.Label}
		fn.Blocks = append(fn.Blocks, blk)
		blocks[b.Label] = blk
		if i == 0 {
			fn.Entry = blk
		}
	}

	// Pre-declare every result register across the whole function so a phi
	// anywhere can reference a value defined in a block not yet lowered.
	for _, b := range decl.Blocks {
		for _, inst := range b.Insts {
			name, resultType := instResult(inst)
			if name == "" {
				continue
			}
			regs[name] = &ir.Value{ID: id(), Name: strings.TrimPrefix(name, "%"), Type: resultType}
		}
	}

	resolveAt := func(pos lexer.Position, reg string) (*ir.Value, error) {
		v, ok := regs[reg]
		if !ok {
			return nil, l.reportLoweringError(pos, cperrors.ErrorUndefinedRegister,
				fmt.Sprintf("undefined register '%s'", reg), len(reg))
		}
		return v, nil
	}

	for bi, b := range decl.Blocks {
		blk := fn.Blocks[bi]
		for _, inst := range b.Insts {
			if err := l.lowerInst(blk, inst, regs, blocks, resolveAt, id); err != nil {
				return nil, err
			}
		}
		term, err := l.lowerTerm(blk, b.Term, blocks, resolveAt, id)
		if err != nil {
			return nil, err
		}
		ir.CloseBlock(blk, term)
	}

	return fn, nil
}

// instResult reports the register name an instruction defines, and the
// type it should carry, without resolving any operand — used by the
// pre-declaration pass above.
func instResult(inst *InstDecl) (string, ir.Type) {
	switch {
	case inst.Alloca != nil:
		return inst.Alloca.Result, &ir.PtrType{Elem: typeOf(inst.Alloca.Elem)}
	case inst.Load != nil:
		return inst.Load.Result, ir.I64
	case inst.Cmp != nil:
		return inst.Cmp.Result, ir.I1
	case inst.Const != nil:
		return inst.Const.Result, ir.I64
	case inst.Phi != nil:
		return inst.Phi.Result, ir.I64
	case inst.Binary != nil:
		return inst.Binary.Result, ir.I64
	default:
		return "", nil
	}
}

func (l *loader) lowerInst(blk *ir.BasicBlock, inst *InstDecl, regs map[string]*ir.Value, blocks map[string]*ir.BasicBlock, resolveAt func(lexer.Position, string) (*ir.Value, error), id func() int) error {
	resolve := func(reg string) (*ir.Value, error) { return resolveAt(inst.Pos, reg) }
	switch {
	case inst.Alloca != nil:
		d := inst.Alloca
		result := regs[d.Result]
		ir.Emit(blk, ir.NewAlloca(id(), result, typeOf(d.Elem)))
		return nil
	case inst.Load != nil:
		d := inst.Load
		addr, err := resolve(d.Addr)
		if err != nil {
			return err
		}
		result := regs[d.Result]
		ir.Emit(blk, ir.NewLoad(id(), result, addr))
		return nil
	case inst.Store != nil:
		d := inst.Store
		addr, err := resolve(d.Addr)
		if err != nil {
			return err
		}
		val, err := resolve(d.Val)
		if err != nil {
			return err
		}
		ir.Emit(blk, ir.NewStore(id(), addr, val))
		return nil
	case inst.Binary != nil:
		d := inst.Binary
		left, err := resolve(d.Left)
		if err != nil {
			return err
		}
		right, err := resolve(d.Right)
		if err != nil {
			return err
		}
		op, err := binOpOf(d.Op)
		if err != nil {
			return err
		}
		result := regs[d.Result]
		ir.Emit(blk, ir.NewBinary(id(), result, op, left, right))
		return nil
	case inst.Cmp != nil:
		d := inst.Cmp
		left, err := resolve(d.Left)
		if err != nil {
			return err
		}
		right, err := resolve(d.Right)
		if err != nil {
			return err
		}
		pred, err := cmpPredOf(d.Pred)
		if err != nil {
			return err
		}
		result := regs[d.Result]
		ir.Emit(blk, ir.NewCmp(id(), result, pred, left, right))
		return nil
	case inst.Const != nil:
		d := inst.Const
		result := regs[d.Result]
		ir.Emit(blk, ir.NewConst(id(), result, d.Imm))
		return nil
	case inst.Phi != nil:
		d := inst.Phi
		result := regs[d.Result]
		edges := make([]ir.PhiEdge, 0, len(d.Edges))
		for _, e := range d.Edges {
			val, err := resolve(e.Val)
			if err != nil {
				return err
			}
			pred, ok := blocks[e.Pred]
			if !ok {
				return l.reportLoweringError(inst.Pos, cperrors.ErrorUndefinedBlock,
					fmt.Sprintf("phi in block '%s' names undefined predecessor '%s'", blk.Label, e.Pred),
					len(e.Pred),
					cperrors.Suggestion{Message: fmt.Sprintf("declare a block labeled '%s:' in this function", e.Pred)})
			}
			edges = append(edges, ir.PhiEdge{Pred: pred, Val: val})
		}
		ir.Emit(blk, ir.NewPhi(id(), result, edges))
		return nil
	default:
		// Unreachable once parsing succeeds: InstDecl's grammar alternation
		// always matches exactly one of the cases above.
		return fmt.Errorf("irasm: empty instruction in block %s", blk.Label)
	}
}

func (l *loader) lowerTerm(blk *ir.BasicBlock, term *TermDecl, blocks map[string]*ir.BasicBlock, resolveAt func(lexer.Position, string) (*ir.Value, error), id func() int) (ir.Terminator, error) {
	resolve := func(reg string) (*ir.Value, error) { return resolveAt(term.Pos, reg) }
	undefinedBlock := func(name string) error {
		return l.reportLoweringError(term.Pos, cperrors.ErrorUndefinedBlock,
			fmt.Sprintf("undefined block '%s'", name), len(name),
			cperrors.Suggestion{Message: fmt.Sprintf("declare a block labeled '%s:' in this function", name)})
	}
	switch {
	case term.CondBr != nil:
		d := term.CondBr
		cond, err := resolve(d.Cond)
		if err != nil {
			return nil, err
		}
		trueBlk, ok := blocks[d.True]
		if !ok {
			return nil, undefinedBlock(d.True)
		}
		falseBlk, ok := blocks[d.False]
		if !ok {
			return nil, undefinedBlock(d.False)
		}
		return ir.NewCondBranch(id(), cond, trueBlk, falseBlk), nil
	case term.Jump != nil:
		target, ok := blocks[term.Jump.Target]
		if !ok {
			return nil, undefinedBlock(term.Jump.Target)
		}
		return ir.NewJump(id(), target), nil
	case term.Return != nil:
		if term.Return.Val == nil {
			return ir.NewReturn(id(), nil), nil
		}
		val, err := resolve(*term.Return.Val)
		if err != nil {
			return nil, err
		}
		return ir.NewReturn(id(), val), nil
	default:
		// Unreachable once parsing succeeds: BlockDecl's grammar requires a
		// TermDecl, so Term is never nil here.
		return nil, fmt.Errorf("irasm: block %s has no terminator", blk.Label)
	}
}

func binOpOf(s string) (ir.BinOp, error) {
	switch s {
	case "add":
		return ir.Add, nil
	case "sub":
		return ir.Sub, nil
	case "mul":
		return ir.Mul, nil
	case "sdiv":
		return ir.SDiv, nil
	default:
		return 0, fmt.Errorf("irasm: unknown binary op %q", s)
	}
}

func cmpPredOf(s string) (ir.CmpPred, error) {
	switch s {
	case "eq":
		return ir.Eq, nil
	case "ne":
		return ir.Ne, nil
	case "sgt":
		return ir.Sgt, nil
	case "slt":
		return ir.Slt, nil
	case "sge":
		return ir.Sge, nil
	case "sle":
		return ir.Sle, nil
	default:
		return 0, fmt.Errorf("irasm: unknown compare predicate %q", s)
	}
}
