package agent

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	OpSplit    OpCode = "split"
	OpJoin     OpCode = "join"
	OpTemplate OpCode = "template"
)

func init() {
	builtinAtoms[OpSplit] = withCategory(Atom{Op: OpSplit, Exec: execSplit, TimeoutMs: 1000, Docs: "Split str on sep."}, "string")
	builtinAtoms[OpJoin] = withCategory(Atom{Op: OpJoin, Exec: execJoin, TimeoutMs: 1000, Docs: "Join list elements with sep."}, "string")
	builtinAtoms[OpTemplate] = withCategory(Atom{
		Op:        OpTemplate,
		Exec:      execTemplate,
		TimeoutMs: 1000,
		Docs:      "Replace every {{name}} in tmpl with vars[name] stringified; missing names become the empty string.",
	}, "string")
}

func execSplit(step Step, rc *RuntimeContext) (any, error) {
	str, _ := ResolveValue(step["str"], rc).(string)
	sep, _ := ResolveValue(step["sep"], rc).(string)

	parts := strings.Split(str, sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func execJoin(step Step, rc *RuntimeContext) (any, error) {
	sep, _ := ResolveValue(step["sep"], rc).(string)
	items := toAnySlice(ResolveValue(step["list"], rc))

	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = stringify(v)
	}
	return strings.Join(parts, sep), nil
}

var templateVarPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

func execTemplate(step Step, rc *RuntimeContext) (any, error) {
	tmpl, _ := step["tmpl"].(string)
	varsRaw, _ := step["vars"].(map[string]any)
	vars := resolveVars(varsRaw, rc)

	return templateVarPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := templateVarPattern.FindStringSubmatch(match)[1]
		v, ok := vars[name]
		if !ok || v == nil {
			return ""
		}
		return stringify(v)
	}), nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
