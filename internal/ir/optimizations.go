package ir

import "fmt"

// Program is a compilation unit: every function the loader produced from
// one source file. The pipeline below runs passes over each in turn; the
// two constant-propagation passes themselves (internal/constprop) only ever
// see a single *Function, so Program exists purely as the multi-function
// container the CLI and the pipeline runner operate on.
type Program struct {
	Functions []*Function
}

// Pass is any transformation that can mutate a single function in place and
// report whether it changed anything. internal/passmgr.FunctionPass has the
// identical method set by construction, so a registered pass satisfies Pass
// with no explicit dependency between the two packages.
type Pass interface {
	Name() string
	Run(fn *Function) bool
}

// Pipeline runs a fixed sequence of passes over every function in a
// Program, in order, optionally reporting progress per pass per function.
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds an empty pipeline; callers add passes with AddPass.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run applies every pass to every function and returns whether anything in
// the program changed. log, when non-nil, receives one line per pass per
// function (used by the CLI's verbose mode).
func (p *Pipeline) Run(prog *Program, log func(string)) bool {
	changed := false
	for _, pass := range p.passes {
		for _, fn := range prog.Functions {
			if pass.Run(fn) {
				changed = true
				if log != nil {
					log(fmt.Sprintf("%s: modified %s", pass.Name(), fn.Name))
				}
			} else if log != nil {
				log(fmt.Sprintf("%s: no change in %s", pass.Name(), fn.Name))
			}
		}
	}
	return changed
}
