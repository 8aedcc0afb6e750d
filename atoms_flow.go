package agent

import "github.com/tonioloewald/agent-99/pkg/schema"

// Flow op codes, per spec.md §4.5. All flow atoms run with TimeoutMs == 0 —
// their children carry their own timeouts (spec.md §3's Atom.timeoutMs).
const (
	OpSeq    OpCode = "seq"
	OpIf     OpCode = "if"
	OpWhile  OpCode = "while"
	OpReturn OpCode = "return"
	OpTry    OpCode = "try"
	OpScope  OpCode = "scope"
)

var builtinAtoms = map[OpCode]Atom{}

func init() {
	builtinAtoms[OpSeq] = withCategory(Atom{
		Op:        OpSeq,
		Exec:      execSeq,
		TimeoutMs: 0,
		Docs:      "Dispatch {steps[]} in order, spending one unit of fuel per child.",
	}, "flow")
	builtinAtoms[OpIf] = withCategory(Atom{
		Op:        OpIf,
		Exec:      execIf,
		TimeoutMs: 0,
		Docs:      "Resolve vars, evaluate condition, run then/else as an inline seq in a child scope.",
	}, "flow")
	builtinAtoms[OpWhile] = withCategory(Atom{
		Op:        OpWhile,
		Exec:      execWhile,
		TimeoutMs: 0,
		Docs:      "Repeat body as an inline seq, in one child scope shared across iterations, while condition is non-zero.",
	}, "flow")
	builtinAtoms[OpReturn] = withCategory(Atom{
		Op:        OpReturn,
		Exec:      execReturn,
		TimeoutMs: 0,
		Docs:      "Project named state bindings into ctx.output, unwinding every enclosing seq/while/scope.",
	}, "flow")
	builtinAtoms[OpTry] = withCategory(Atom{
		Op:        OpTry,
		Exec:      execTry,
		TimeoutMs: 0,
		Docs:      "Run try as an inline seq; on a non-fatal error bind state.error and run catch in the same scope.",
	}, "flow")
	builtinAtoms[OpScope] = withCategory(Atom{
		Op:        OpScope,
		Exec:      execScope,
		TimeoutMs: 0,
		Docs:      "Run steps as an inline seq inside a fresh child scope, discarded on exit.",
	}, "flow")
}

func execSeq(step Step, rc *RuntimeContext) (any, error) {
	return nil, dispatchSeq(step.Steps("steps"), rc)
}

// evalCondition resolves a flow atom's vars through the Value Resolver,
// coerces them to float64, and evaluates condition through the Expression
// Evaluator. A result of exactly 0 is false; anything else is true
// (spec.md §4.2).
func evalCondition(step Step, rc *RuntimeContext) (bool, error) {
	vars, _ := step["vars"].(map[string]any)
	resolved := resolveVars(vars, rc)
	floatVars := coerceToFloatVars(resolved)

	cond, _ := step["condition"].(string)
	result, err := EvalExpr(cond, floatVars)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

func execIf(step Step, rc *RuntimeContext) (any, error) {
	cond, err := evalCondition(step, rc)
	if err != nil {
		return nil, err
	}

	if cond {
		return nil, withChildScope(rc, func() error {
			return dispatchSeq(step.Steps("then"), rc)
		})
	}

	if _, hasElse := step["else"]; hasElse {
		return nil, withChildScope(rc, func() error {
			return dispatchSeq(step.Steps("else"), rc)
		})
	}
	return nil, nil
}

func execWhile(step Step, rc *RuntimeContext) (any, error) {
	parent := rc.State
	rc.State = parent.NewChildScope()
	defer func() { rc.State = parent }()

	for {
		if rc.Fuel <= 0 {
			return nil, &OutOfFuelError{Op: OpWhile}
		}

		cond, err := evalCondition(step, rc)
		if err != nil {
			return nil, err
		}
		if !cond {
			return nil, nil
		}

		if err := dispatchSeq(step.Steps("body"), rc); err != nil {
			return nil, err
		}
		if rc.OutputSet {
			return nil, nil
		}
	}
}

func execReturn(step Step, rc *RuntimeContext) (any, error) {
	keys := returnKeys(step["schema"])
	obj := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := rc.State.Get(k); ok {
			obj[k] = v
		}
	}
	rc.setOutput(obj)
	return nil, nil
}

// returnKeys extracts the property names return projects from state, per
// spec.md §4.5's "build an object whose keys are the properties declared
// by schema (if any)". The AST wire format (spec.md §6) carries plain JSON,
// so an inline return.schema decodes as either a bare array of key names
// or an object-schema-shaped {"properties": {...}}; a Go-constructed AST
// (e.g. from a host library) may instead pass a *schema.ObjectSchema value
// directly, in which case PropertyNames supplies the same list.
func returnKeys(v any) []string {
	switch s := v.(type) {
	case *schema.ObjectSchema:
		return s.PropertyNames()
	case []any:
		out := make([]string, 0, len(s))
		for _, k := range s {
			if name, ok := k.(string); ok {
				out = append(out, name)
			}
		}
		return out
	case map[string]any:
		if props, ok := s["properties"].(map[string]any); ok {
			out := make([]string, 0, len(props))
			for k := range props {
				out = append(out, k)
			}
			return out
		}
	}
	return nil
}

func execTry(step Step, rc *RuntimeContext) (any, error) {
	_, hasCatch := step["catch"]

	err := dispatchSeq(step.Steps("try"), rc)
	if err == nil {
		return nil, nil
	}
	if isFatal(err) || !hasCatch {
		return nil, err
	}

	rc.State.Set("error", err.Error())
	return nil, dispatchSeq(step.Steps("catch"), rc)
}

func execScope(step Step, rc *RuntimeContext) (any, error) {
	return nil, withChildScope(rc, func() error {
		return dispatchSeq(step.Steps("steps"), rc)
	})
}
