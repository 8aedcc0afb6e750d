package agent

const (
	OpPick  OpCode = "pick"
	OpMerge OpCode = "merge"
	OpKeys  OpCode = "keys"
)

func init() {
	builtinAtoms[OpPick] = withCategory(Atom{Op: OpPick, Exec: execPick, TimeoutMs: 1000, Docs: "Project obj onto keys; a missing key yields an undefined (nil) entry."}, "object")
	builtinAtoms[OpMerge] = withCategory(Atom{Op: OpMerge, Exec: execMerge, TimeoutMs: 1000, Docs: "Right-biased shallow merge of a and b."}, "object")
	builtinAtoms[OpKeys] = withCategory(Atom{Op: OpKeys, Exec: execKeys, TimeoutMs: 1000, Docs: "Enumerate obj's keys, or the current scope's own local bindings if obj is omitted."}, "object")
}

func execPick(step Step, rc *RuntimeContext) (any, error) {
	obj, _ := ResolveValue(step["obj"], rc).(map[string]any)
	keysRaw, _ := step["keys"].([]any)

	out := make(map[string]any, len(keysRaw))
	for _, k := range keysRaw {
		name, ok := k.(string)
		if !ok {
			continue
		}
		out[name] = obj[name]
	}
	return out, nil
}

func execMerge(step Step, rc *RuntimeContext) (any, error) {
	a, _ := ResolveValue(step["a"], rc).(map[string]any)
	b, _ := ResolveValue(step["b"], rc).(map[string]any)

	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out, nil
}

func execKeys(step Step, rc *RuntimeContext) (any, error) {
	if raw, present := step["obj"]; present {
		obj, _ := ResolveValue(raw, rc).(map[string]any)
		out := make([]any, 0, len(obj))
		for k := range obj {
			out = append(out, k)
		}
		return out, nil
	}

	local := rc.State.Keys()
	out := make([]any, len(local))
	for i, k := range local {
		out[i] = k
	}
	return out, nil
}
