package agent

const OpMathCalc OpCode = "math.calc"

func init() {
	builtinAtoms[OpMathCalc] = withCategory(Atom{
		Op:        OpMathCalc,
		Exec:      execMathCalc,
		TimeoutMs: 1000,
		Docs:      "Resolve vars through the Value Resolver and evaluate expr through the Expression Evaluator.",
	}, "math")
}

func execMathCalc(step Step, rc *RuntimeContext) (any, error) {
	vars, _ := step["vars"].(map[string]any)
	resolved := resolveVars(vars, rc)
	floatVars := coerceToFloatVars(resolved)

	expr, _ := step["expr"].(string)
	return EvalExpr(expr, floatVars)
}
