// Package passmgr is the pass-manager host: a name-keyed registry that
// constant-propagation passes join via init(), and that cmd/constprop-cli
// consults to resolve a -pass flag to a runnable FunctionPass. Split out so internal/ir stays free of any dependency on
// the passes themselves.
package passmgr

import (
	"fmt"
	"sort"
	"sync"

	"constprop/internal/ir"
)

// FunctionPass is the unit of work the registry tracks. Its method set is
// identical to ir.Pass by construction: a *constprop.NSCP or *constprop.SCCP
// satisfies both interfaces without either package importing the other.
type FunctionPass interface {
	Name() string
	Run(fn *ir.Function) bool
}

var (
	mu       sync.Mutex
	registry = map[string]FunctionPass{}
)

// Register adds pass to the registry under name, overwriting any prior
// registration for that name. Called from each pass package's init().
func Register(name string, pass FunctionPass) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = pass
}

// Get resolves name to its registered pass.
func Get(name string) (FunctionPass, error) {
	mu.Lock()
	defer mu.Unlock()
	pass, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("passmgr: no pass registered under %q (known: %v)", name, names())
	}
	return pass, nil
}

// Names lists every registered pass name, sorted for stable CLI help text.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	return names()
}

func names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
