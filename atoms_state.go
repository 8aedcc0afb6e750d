package agent

const (
	OpVarSet OpCode = "var.set"
	OpVarGet OpCode = "var.get"
)

func init() {
	builtinAtoms[OpVarSet] = withCategory(Atom{
		Op:        OpVarSet,
		Exec:      execVarSet,
		TimeoutMs: 1000,
		Docs:      "Store value under key in the current scope, raw — no resolution is applied to value.",
	}, "state")
	builtinAtoms[OpVarGet] = withCategory(Atom{
		Op:        OpVarGet,
		Exec:      execVarGet,
		TimeoutMs: 1000,
		Docs:      "Resolve key through the Value Resolver: a bound variable, an args reference, or the literal key string.",
	}, "state")
}

func execVarSet(step Step, rc *RuntimeContext) (any, error) {
	key, _ := step["key"].(string)
	rc.State.Set(key, step["value"])
	return nil, nil
}

func execVarGet(step Step, rc *RuntimeContext) (any, error) {
	return ResolveValue(step["key"], rc), nil
}
