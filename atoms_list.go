package agent

import "reflect"

const (
	OpMap  OpCode = "map"
	OpPush OpCode = "push"
	OpLen  OpCode = "len"
)

func init() {
	builtinAtoms[OpMap] = withCategory(Atom{
		Op:        OpMap,
		Exec:      execMap,
		TimeoutMs: 5000,
		Docs:      "For each element of items, bind as in a fresh child scope, run steps, collect scope.state.result.",
	}, "list")
	builtinAtoms[OpPush] = withCategory(Atom{
		Op:        OpPush,
		Exec:      execPush,
		TimeoutMs: 1000,
		Docs:      "Append item to list and return the new list, rebinding list in place if it names a variable.",
	}, "list")
	builtinAtoms[OpLen] = withCategory(Atom{
		Op:        OpLen,
		Exec:      execLen,
		TimeoutMs: 1000,
		Docs:      "Length of a sequence or string; 0 for any other type.",
	}, "list")
}

func execMap(step Step, rc *RuntimeContext) (any, error) {
	items := toAnySlice(ResolveValue(step["items"], rc))
	asName, _ := step["as"].(string)
	bodySteps := step.Steps("steps")

	results := make([]any, 0, len(items))
	for _, item := range items {
		var result any
		err := withChildScope(rc, func() error {
			rc.State.Set(asName, item)
			if err := dispatchSeq(bodySteps, rc); err != nil {
				return err
			}
			if v, ok := rc.State.GetLocal("result"); ok {
				result = v
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		if rc.OutputSet {
			return results, nil
		}
	}
	return results, nil
}

func execPush(step Step, rc *RuntimeContext) (any, error) {
	item := ResolveValue(step["item"], rc)
	list := append(toAnySlice(ResolveValue(step["list"], rc)), item)

	if name, ok := step["list"].(string); ok {
		if _, bound := rc.State.Get(name); bound {
			rc.State.Set(name, list)
		}
	}
	return list, nil
}

func execLen(step Step, rc *RuntimeContext) (any, error) {
	return float64(lengthOf(ResolveValue(step["list"], rc))), nil
}

// toAnySlice normalizes a resolved value into a []any, copying so push
// never mutates a slice another binding still references.
func toAnySlice(v any) []any {
	if v == nil {
		return nil
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		copy(out, s)
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func lengthOf(v any) int {
	switch s := v.(type) {
	case nil:
		return 0
	case string:
		return len(s)
	case []any:
		return len(s)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return rv.Len()
		default:
			return 0
		}
	}
}
