package agent

import "github.com/tonioloewald/agent-99/pkg/schema"

// AtomFunc is an atom's exec procedure: (step, ctx) -> (). Per spec.md
// §4.4, it may mutate ctx (state, output, fuel via nested dispatch) and
// optionally returns a value that gets bound into ctx.State via
// step.Result().
type AtomFunc func(step Step, ctx *RuntimeContext) (any, error)

// Atom is a uniform operation descriptor, per spec.md §3.
type Atom struct {
	Op           OpCode
	InputSchema  schema.Schema // optional; nil means "no input validation"
	OutputSchema schema.Schema // advisory only, never enforced at runtime
	Exec         AtomFunc
	TimeoutMs    int // 0 means no timeout (flow atoms: children carry their own)
	Docs         string
	Meta         map[string]any
}

// Registry maps OpCode to Atom — the VM's resolver (spec.md §3).
type Registry struct {
	atoms map[OpCode]Atom
}

// NewRegistry builds a registry from the built-in atom table, overlaid
// with custom, which wins on conflict (spec.md §6's "Constructor accepts
// an optional map of custom atoms... these override built-ins on
// conflict").
func NewRegistry(custom map[OpCode]Atom) *Registry {
	atoms := make(map[OpCode]Atom, len(builtinAtoms)+len(custom))
	for op, a := range builtinAtoms {
		atoms[op] = a
	}
	for op, a := range custom {
		atoms[op] = a
	}
	return &Registry{atoms: atoms}
}

// Lookup resolves an OpCode to its Atom.
func (r *Registry) Lookup(op OpCode) (Atom, bool) {
	a, ok := r.atoms[op]
	return a, ok
}
