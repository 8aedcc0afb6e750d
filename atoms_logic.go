package agent

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	OpEq  OpCode = "eq"
	OpNeq OpCode = "neq"
	OpGt  OpCode = "gt"
	OpLt  OpCode = "lt"
	OpAnd OpCode = "and"
	OpOr  OpCode = "or"
	OpNot OpCode = "not"
)

func init() {
	builtinAtoms[OpEq] = withCategory(Atom{Op: OpEq, Exec: execEq, TimeoutMs: 1000, Docs: "Value equality of a and b."}, "logic")
	builtinAtoms[OpNeq] = withCategory(Atom{Op: OpNeq, Exec: execNeq, TimeoutMs: 1000, Docs: "Negated value equality of a and b."}, "logic")
	builtinAtoms[OpGt] = withCategory(Atom{Op: OpGt, Exec: execGt, TimeoutMs: 1000, Docs: "a > b under the host's total order on numbers and strings."}, "logic")
	builtinAtoms[OpLt] = withCategory(Atom{Op: OpLt, Exec: execLt, TimeoutMs: 1000, Docs: "a < b under the host's total order on numbers and strings."}, "logic")
	builtinAtoms[OpAnd] = withCategory(Atom{Op: OpAnd, Exec: execAnd, TimeoutMs: 1000, Docs: "Boolean and of a and b."}, "logic")
	builtinAtoms[OpOr] = withCategory(Atom{Op: OpOr, Exec: execOr, TimeoutMs: 1000, Docs: "Boolean or of a and b."}, "logic")
	builtinAtoms[OpNot] = withCategory(Atom{Op: OpNot, Exec: execNot, TimeoutMs: 1000, Docs: "Boolean negation of value."}, "logic")
}

func resolvedOperands(step Step, rc *RuntimeContext) (a, b any) {
	return ResolveValue(step["a"], rc), ResolveValue(step["b"], rc)
}

func execEq(step Step, rc *RuntimeContext) (any, error) {
	a, b := resolvedOperands(step, rc)
	return valuesEqual(a, b), nil
}

func execNeq(step Step, rc *RuntimeContext) (any, error) {
	a, b := resolvedOperands(step, rc)
	return !valuesEqual(a, b), nil
}

func execGt(step Step, rc *RuntimeContext) (any, error) {
	a, b := resolvedOperands(step, rc)
	return compareValues(a, b) > 0, nil
}

func execLt(step Step, rc *RuntimeContext) (any, error) {
	a, b := resolvedOperands(step, rc)
	return compareValues(a, b) < 0, nil
}

func execAnd(step Step, rc *RuntimeContext) (any, error) {
	a, b := resolvedOperands(step, rc)
	return toBool(a) && toBool(b), nil
}

func execOr(step Step, rc *RuntimeContext) (any, error) {
	a, b := resolvedOperands(step, rc)
	return toBool(a) || toBool(b), nil
}

func execNot(step Step, rc *RuntimeContext) (any, error) {
	v := ResolveValue(step["value"], rc)
	return !toBool(v), nil
}

func valuesEqual(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders a and b numerically when both coerce to a number,
// falling back to lexicographic string comparison otherwise — "the host's
// total order on numbers and strings" of spec.md §4.5.
func compareValues(a, b any) int {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case nil:
		return false
	case float64:
		return b != 0
	case string:
		return b != ""
	default:
		return true
	}
}
