package agent

import "strings"

// ArgRefKind marks an AST-embedded object as an argument reference:
// {"$kind": "arg", "path": "<name>"}.
const ArgRefKind = "arg"

// Ref is the tagged-variant form of an AST value, per the redesign note in
// spec.md §9: "a systems-language reimplementation should make this
// explicit via a tagged variant Value = Literal(v) | Ref(name) | Arg(path)".
// A Ref is built with VarRef or ArgRef; any other Go value is a literal.
// Only ResolveTyped interprets Refs — the built-in atoms read the JSON AST
// through ResolveValue, which accepts the untyped string-shorthand form
// for backward compatibility.
type Ref struct {
	kind string // "ref" or "arg"
	name string
}

// VarRef builds a reference to a state-scope binding.
func VarRef(name string) Ref { return Ref{kind: "ref", name: name} }

// ArgRef builds a reference to an args-map entry.
func ArgRef(name string) Ref { return Ref{kind: ArgRefKind, name: name} }

// ResolveTyped resolves a tagged Ref against ctx, falling back to a plain
// literal for any other Go value.
func ResolveTyped(v any, ctx *RuntimeContext) any {
	if ref, ok := v.(Ref); ok {
		switch ref.kind {
		case ArgRefKind:
			return ctx.Args[ref.name]
		default:
			if val, ok := ctx.State.Get(ref.name); ok {
				return val
			}
			return ref.name
		}
	}
	return ResolveValue(v, ctx)
}

// ResolveValue converts an AST-embedded value into a runtime value,
// per spec.md §4.1:
//
//  1. an object tagged {"$kind":"arg","path":P} resolves to ctx.Args[P].
//  2. a string "args.<name>" resolves to ctx.Args[<name>].
//  3. a string matching a binding in ctx.State (including via scope
//     fallthrough) resolves to that binding.
//  4. anything else passes through unchanged, including the original
//     string — plain string literals can act as variable references by
//     convention, which is deliberate: it keeps the AST compact.
func ResolveValue(v any, ctx *RuntimeContext) any {
	if m, ok := v.(map[string]any); ok {
		if kind, ok := m["$kind"].(string); ok && kind == ArgRefKind {
			path, _ := m["path"].(string)
			return ctx.Args[path]
		}
		return v
	}

	s, ok := v.(string)
	if !ok {
		return v
	}

	if rest, found := strings.CutPrefix(s, "args."); found {
		return ctx.Args[rest]
	}

	if val, found := ctx.State.Get(s); found {
		return val
	}

	return s
}

// resolveVars resolves every entry of a vars map (as used by `if`, `while`,
// and `math.calc`) against ctx, yielding a plain map ready for the
// Expression Evaluator.
func resolveVars(vars map[string]any, ctx *RuntimeContext) map[string]any {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = ResolveValue(v, ctx)
	}
	return out
}
