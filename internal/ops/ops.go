// Package ops implements the pluggable geometry operations and the
// registry the dispatcher selects them from. Every operation validates
// its config before touching geometry and is deterministic for identical
// input unless a seed parameter explicitly requests otherwise.
package ops

import (
	"sort"

	"github.com/chiselgeo/chisel/internal/boundary"
)

// Operation is one geometry algorithm selected by the command key.
type Operation interface {
	// Validate rejects missing, malformed and out-of-range parameters.
	// It must not inspect geometry.
	Validate(cfg boundary.Config) error

	// Execute runs the algorithm. models is never mutated; the result
	// carries freshly allocated buffers and a fresh output config.
	Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error)
}

// registry is populated by init functions in this package and read-only
// afterwards, so lookups need no locking.
var registry = make(map[string]Operation)

// Register adds an operation under a command name. It is called from
// init functions only; a duplicate name is a programming error.
func Register(name string, op Operation) {
	if _, dup := registry[name]; dup {
		panic("ops: duplicate registration of " + name)
	}
	registry[name] = op
}

// Lookup returns the operation registered under name. The match is exact
// and case-sensitive.
func Lookup(name string) (Operation, bool) {
	op, ok := registry[name]
	return op, ok
}

// Names returns all registered command names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// singleModel is the common "exactly one input model with geometry" check.
func singleModel(models []boundary.Model) (*boundary.Model, error) {
	if len(models) == 0 || len(models[0].Vertices) == 0 {
		return nil, boundary.Executionf("operation needs one input model with vertices")
	}
	return &models[0], nil
}
