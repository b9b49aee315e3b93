// Package config resolves the CLI's flags into the options the rest of the
// module needs: which pass to run, which input file to read, and whether
// to trace the engine's worklist activity. Kept separate from
// cmd/constprop-cli/main.go so the flag surface can be unit tested without
// an os.Args dance.
package config

import (
	"flag"
	"fmt"
	"os"

	cperrors "constprop/internal/errors"
)

// Config holds one resolved invocation's settings.
type Config struct {
	Pass    string // "nscp" (default) or "sccp"
	Input   string // path to the .ir source file
	Trace   bool   // emit per-instruction engine trace to stderr
	Verbose bool   // emit per-pass change summary
}

// Parse resolves args (typically os.Args[1:]) into a Config, defaulting
// Pass to "nscp".
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("constprop", flag.ContinueOnError)
	cfg := Config{}
	fs.StringVar(&cfg.Pass, "pass", "nscp", "constant propagation pass to run: nscp or sccp")
	fs.BoolVar(&cfg.Trace, "trace", false, "print per-instruction engine trace")
	fs.BoolVar(&cfg.Verbose, "v", false, "print per-pass change summary")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Pass != "nscp" && cfg.Pass != "sccp" {
		return Config{}, reportUnknownPass(cfg.Pass)
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return Config{}, fmt.Errorf("config: expected exactly one input file, got %d", len(rest))
	}
	cfg.Input = rest[0]
	return cfg, nil
}

// reportUnknownPass renders an invalid -pass value through the same
// caret-annotated reporter irasm uses for source diagnostics, treating the
// flag's value as a one-line "source" so the CLI's whole diagnostic surface
// goes through one formatter rather than a bare error string just for this
// one flag.
func reportUnknownPass(pass string) error {
	reporter := cperrors.NewErrorReporter("-pass", pass)
	fmt.Fprint(os.Stderr, reporter.FormatError(cperrors.CompilerError{
		Level:    cperrors.Error,
		Code:     cperrors.ErrorUnknownPass,
		Message:  fmt.Sprintf("unknown pass %q", pass),
		Position: cperrors.Position{Line: 1, Column: 1},
		Length:   len(pass),
		Suggestions: []cperrors.Suggestion{
			{Message: "pass is either \"nscp\" or \"sccp\""},
		},
	}))
	return fmt.Errorf("config: unknown pass %q (want nscp or sccp)", pass)
}
