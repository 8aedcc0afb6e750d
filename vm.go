package agent

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// VM orchestrator, per spec.md §4.6 and §6. It holds a registry seeded
// with the built-in atoms and overlaid with caller-supplied custom atoms,
// plus an ordered extension chain — the teacher's NewScope/UseExtension
// pattern (scope.go) generalized from a DI container to an atom
// dispatcher.
type VM struct {
	registry *Registry

	mu   sync.RWMutex
	exts []Extension
}

// NewVM builds a VM. custom atoms override built-ins with the same op
// code (spec.md §6).
func NewVM(custom map[OpCode]Atom) *VM {
	return &VM{registry: NewRegistry(custom)}
}

// Use registers an extension, keeping the chain sorted by Order() like the
// teacher's UseExtension/sort.Slice.
func (vm *VM) Use(ext Extension) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.exts = append(vm.exts, ext)
	sort.SliceStable(vm.exts, func(i, j int) bool { return vm.exts[i].Order() < vm.exts[j].Order() })
}

func (vm *VM) extensions() []Extension {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]Extension, len(vm.exts))
	copy(out, vm.exts)
	return out
}

// Run builds the root RuntimeContext and dispatches the root seq atom, per
// spec.md §4.6:
//
//	fuel = options.fuel, or 1000 when it is 0
//	state = {}
//	capabilities = options.capabilities ?? {}
//	output = undefined
//
// A root whose op is not "seq" is rejected with BadRootError (spec.md §3
// invariant 5). The host's context.Context layers cancellation on top of
// the spec's own fuel/timeout model (see SPEC_FULL.md §5.4); pass
// context.Background() for a run with no external deadline.
func (vm *VM) Run(ctx context.Context, ast Step, args map[string]any, opts RunOptions) (RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	fuel := opts.Fuel
	if fuel == 0 {
		fuel = 1000
	}
	if args == nil {
		args = map[string]any{}
	}

	rc := &RuntimeContext{
		ctx:          ctx,
		Fuel:         fuel,
		Args:         args,
		State:        NewRootScope(),
		Capabilities: opts.Capabilities,
		Resolver:     vm.registry,
		RunID:        uuid.NewString(),
		vm:           vm,
	}

	for _, ext := range vm.extensions() {
		ext.OnRunStart(rc, ast)
	}

	if ast.Op() != OpSeq {
		err := &BadRootError{Op: ast.Op()}
		result := RunResult{FuelUsed: fuel - rc.Fuel, RunID: rc.RunID}
		for _, ext := range vm.extensions() {
			ext.OnRunEnd(rc, result, err)
		}
		return result, err
	}

	_, err := Dispatch(ast, rc, false)

	result := RunResult{Output: rc.Output, FuelUsed: fuel - rc.Fuel, RunID: rc.RunID}

	for _, ext := range vm.extensions() {
		ext.OnRunEnd(rc, result, err)
	}

	return result, err
}
