package agent

import (
	"sort"

	"github.com/tonioloewald/agent-99/pkg/meta"
)

// categoryMeta is the Atom.Meta key every built-in atom sets via
// meta.Set, grouping the registry the way spec.md §4.5 itself is laid
// out (flow, state, logic, math, list, string, object, io) — the
// teacher's executorBase.WithMeta("name", ...) pattern (pkg/core/executor.go)
// applied to atom descriptors instead of DI executors.
const categoryMeta = "category"

// AtomDoc is a read-only summary of a registered atom, for CLI/docs use.
type AtomDoc struct {
	Op       OpCode
	Category string
	Docs     string
}

// Catalog lists every atom in the VM's registry, sorted by category then
// op, reading the category back out via meta.Get the way a host or the
// CLI's -list flag would — it never reaches into Atom.Meta directly.
func (vm *VM) Catalog() []AtomDoc {
	docs := make([]AtomDoc, 0, len(vm.registry.atoms))
	for op, atom := range vm.registry.atoms {
		category, _ := meta.Get[string](atom.Meta, categoryMeta)
		docs = append(docs, AtomDoc{Op: op, Category: category, Docs: atom.Docs})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Category != docs[j].Category {
			return docs[i].Category < docs[j].Category
		}
		return docs[i].Op < docs[j].Op
	})
	return docs
}

// withCategory stamps a built-in atom's Meta with its category, via
// meta.Set, before it's registered in builtinAtoms.
func withCategory(a Atom, category string) Atom {
	if a.Meta == nil {
		a.Meta = map[string]any{}
	}
	meta.Set(a.Meta, categoryMeta, category)
	return a
}
