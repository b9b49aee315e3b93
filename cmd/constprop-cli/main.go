// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"constprop/internal/config"
	"constprop/internal/constprop"
	"constprop/internal/ir"
	"constprop/internal/irasm"
	"constprop/internal/passmgr"
)

// resolvePass mirrors passmgr.Get but, for sccp, builds a fresh value so
// -trace can wire a Debug sink per invocation rather than sharing the one
// instance registered globally in constprop's init().
func resolvePass(cfg config.Config) (passmgr.FunctionPass, error) {
	if cfg.Pass == "sccp" {
		s := constprop.SCCP{}
		if cfg.Trace {
			s.Debug = func(line string) { fmt.Fprintln(os.Stderr, line) }
		}
		return s, nil
	}
	return passmgr.Get(cfg.Pass)
}

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		// config.Parse already rendered a caret diagnostic for anything it
		// can attribute to a specific flag (an unknown -pass value); this
		// usage line is the fallback for errors that don't have one (e.g.
		// a missing or extra input file argument).
		fmt.Fprintf(os.Stderr, "usage: constprop-cli [-pass=nscp|sccp] [-trace] [-v] <file.ir>\n")
		os.Exit(1)
	}

	fns, err := irasm.LoadFile(cfg.Input)
	if err != nil {
		os.Exit(1)
	}

	pass, err := resolvePass(cfg)
	if err != nil {
		color.Red("constprop: %s", err)
		os.Exit(1)
	}

	prog := &ir.Program{Functions: fns}
	pipeline := ir.NewPipeline()
	pipeline.AddPass(pass)

	var log func(string)
	if cfg.Verbose {
		log = func(line string) { color.Green("%s", line) }
	}
	pipeline.Run(prog, log)

	for _, fn := range prog.Functions {
		fmt.Print(ir.Print(fn))
	}

	color.Green("done")
}
