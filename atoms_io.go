package agent

const (
	OpHTTPFetch       OpCode = "http.fetch"
	OpStoreGet        OpCode = "store.get"
	OpStoreSet        OpCode = "store.set"
	OpStoreQuery      OpCode = "store.query"
	OpStoreVectorSrch OpCode = "store.vectorSearch"
	OpLLMPredict      OpCode = "llm.predict"
	OpAgentRun        OpCode = "agent.run"
)

// IO/store/agent atoms get a generous default timeout since they suspend
// on a host-provided capability call, per spec.md §5's "suspension happens
// on capability invocations".
const capabilityTimeoutMs = 30000

func init() {
	builtinAtoms[OpHTTPFetch] = withCategory(Atom{Op: OpHTTPFetch, Exec: execHTTPFetch, TimeoutMs: capabilityTimeoutMs, Docs: "capabilities.fetch(url, {method, headers, body})."}, "io")
	builtinAtoms[OpStoreGet] = withCategory(Atom{Op: OpStoreGet, Exec: execStoreGet, TimeoutMs: capabilityTimeoutMs, Docs: "capabilities.store.get(key)."}, "io")
	builtinAtoms[OpStoreSet] = withCategory(Atom{Op: OpStoreSet, Exec: execStoreSet, TimeoutMs: capabilityTimeoutMs, Docs: "capabilities.store.set(key, value)."}, "io")
	builtinAtoms[OpStoreQuery] = withCategory(Atom{Op: OpStoreQuery, Exec: execStoreQuery, TimeoutMs: capabilityTimeoutMs, Docs: "capabilities.store.query(q)."}, "io")
	builtinAtoms[OpStoreVectorSrch] = withCategory(Atom{Op: OpStoreVectorSrch, Exec: execStoreVectorSearch, TimeoutMs: capabilityTimeoutMs, Docs: "capabilities.store.vectorSearch(vec)."}, "io")
	builtinAtoms[OpLLMPredict] = withCategory(Atom{Op: OpLLMPredict, Exec: execLLMPredict, TimeoutMs: capabilityTimeoutMs, Docs: "capabilities.llm.predict(prompt, options)."}, "io")
	builtinAtoms[OpAgentRun] = withCategory(Atom{Op: OpAgentRun, Exec: execAgentRun, TimeoutMs: capabilityTimeoutMs, Docs: "Host-defined recursive invocation of another agent by id."}, "io")
}

func execHTTPFetch(step Step, rc *RuntimeContext) (any, error) {
	if rc.Capabilities.Fetch == nil {
		return nil, &MissingCapabilityError{Op: OpHTTPFetch, Capability: "fetch"}
	}

	url, _ := ResolveValue(step["url"], rc).(string)
	method, _ := step["method"].(string)
	if method == "" {
		method = "GET"
	}

	headers := map[string]string{}
	if h, ok := step["headers"].(map[string]any); ok {
		for k, v := range h {
			if s, ok := v.(string); ok {
				headers[k] = s
			}
		}
	}

	body := ResolveValue(step["body"], rc)
	return rc.Capabilities.Fetch(rc.Context(), url, FetchRequest{Method: method, Headers: headers, Body: body})
}

func execStoreGet(step Step, rc *RuntimeContext) (any, error) {
	if rc.Capabilities.Store == nil {
		return nil, &MissingCapabilityError{Op: OpStoreGet, Capability: "store"}
	}
	key, _ := ResolveValue(step["key"], rc).(string)
	return rc.Capabilities.Store.Get(rc.Context(), key)
}

func execStoreSet(step Step, rc *RuntimeContext) (any, error) {
	if rc.Capabilities.Store == nil {
		return nil, &MissingCapabilityError{Op: OpStoreSet, Capability: "store"}
	}
	key, _ := ResolveValue(step["key"], rc).(string)
	value := ResolveValue(step["value"], rc)
	return nil, rc.Capabilities.Store.Set(rc.Context(), key, value)
}

func execStoreQuery(step Step, rc *RuntimeContext) (any, error) {
	if rc.Capabilities.Store == nil {
		return nil, &MissingCapabilityError{Op: OpStoreQuery, Capability: "store"}
	}
	q := ResolveValue(step["q"], rc)
	return rc.Capabilities.Store.Query(rc.Context(), q)
}

func execStoreVectorSearch(step Step, rc *RuntimeContext) (any, error) {
	if rc.Capabilities.Store == nil {
		return nil, &MissingCapabilityError{Op: OpStoreVectorSrch, Capability: "store"}
	}
	raw := toAnySlice(ResolveValue(step["vec"], rc))
	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = coerceToFloat(v)
	}
	return rc.Capabilities.Store.VectorSearch(rc.Context(), vec)
}

func execLLMPredict(step Step, rc *RuntimeContext) (any, error) {
	if rc.Capabilities.LLM == nil {
		return nil, &MissingCapabilityError{Op: OpLLMPredict, Capability: "llm"}
	}
	prompt, _ := ResolveValue(step["prompt"], rc).(string)
	options, _ := step["options"].(map[string]any)
	return rc.Capabilities.LLM.Predict(rc.Context(), prompt, options)
}

func execAgentRun(step Step, rc *RuntimeContext) (any, error) {
	if rc.Capabilities.Agent == nil {
		return nil, &MissingCapabilityError{Op: OpAgentRun, Capability: "agent"}
	}
	agentID, _ := ResolveValue(step["agentId"], rc).(string)
	input := ResolveValue(step["input"], rc)
	return rc.Capabilities.Agent(rc.Context(), agentID, input)
}
