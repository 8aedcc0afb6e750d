package agent

import "sync"

// Scope is a lexically nested variable environment, per spec.md §4.3 and
// §3 invariant 2: reads fall through to the nearest enclosing binding,
// writes always land in the local frame. It mirrors the teacher's
// ExecutionCtx parent-pointer chain (data/parent/GetFromParent/Lookup in
// flow.go), generalized from a flat per-flow data bag to the nested
// scope/map/if/while bodies (try/catch bodies run in the enclosing scope).
type Scope struct {
	mu     sync.RWMutex
	data   map[string]any
	parent *Scope
}

// NewRootScope allocates the top-level state frame for a run; it has no
// parent, so Get never falls through past it.
func NewRootScope() *Scope {
	return &Scope{data: make(map[string]any)}
}

// NewChildScope allocates a frame whose missing-key reads fall through to
// parent. Used on entry to scope, map, if, and while bodies; discarded on
// exit per spec.md §3 Lifecycle. try/catch deliberately does not use this —
// see runtime.go's withChildScope doc comment.
func (s *Scope) NewChildScope() *Scope {
	return &Scope{data: make(map[string]any), parent: s}
}

// Get reads a binding, checking the local frame first and then walking the
// parent chain — the nearest enclosing binding wins (spec.md §3 invariant
// 2). ok is false only if no frame in the chain has the name bound.
func (s *Scope) Get(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.data[name]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Set writes a binding into the local frame only — a write inside a child
// scope never leaks upward (spec.md §3 invariant 1), even when the name
// shadows an ancestor's binding.
func (s *Scope) Set(name string, value any) {
	s.mu.Lock()
	s.data[name] = value
	s.mu.Unlock()
}

// GetLocal reads a binding from the local frame only, without falling
// through to the parent chain — used where a spec contract names the
// child scope's own state explicitly (e.g. `map`'s "push scope.state.result").
func (s *Scope) GetLocal(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// Keys returns the names bound in the local frame only (not the parent
// chain) — used by the `keys` atom when given the current scope's own
// bindings rather than an explicit object value.
func (s *Scope) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
