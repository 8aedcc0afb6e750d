package agent

import "context"

// OpCode identifies an atom uniquely within a registry (spec.md §3).
type OpCode string

// Step is one AST node: a JSON object decoded into a plain map, carrying a
// required "op" field, an optional "result" field, and atom-specific
// fields (spec.md §6). Nested step arrays decode as []any holding further
// Step values.
type Step map[string]any

// Op returns the step's op code, or "" if absent/not a string.
func (s Step) Op() OpCode {
	v, _ := s["op"].(string)
	return OpCode(v)
}

// Result returns the step's result binding name, if any.
func (s Step) Result() (string, bool) {
	v, ok := s["result"].(string)
	return v, ok
}

// InputData returns the step with "op" and "result" stripped, per spec.md
// §4.4 step 1 — this is what gets validated against an atom's InputSchema.
func (s Step) InputData() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		if k == "op" || k == "result" {
			continue
		}
		out[k] = v
	}
	return out
}

// Steps decodes a field expected to hold a nested array of AST nodes
// (e.g. "steps", "then", "body").
func (s Step) Steps(field string) []Step {
	raw, _ := s[field].([]any)
	out := make([]Step, 0, len(raw))
	for _, r := range raw {
		switch m := r.(type) {
		case Step:
			out = append(out, m)
		case map[string]any:
			out = append(out, Step(m))
		}
	}
	return out
}

// Capabilities is the externally-provided effect surface a host wires into
// a run (spec.md §3, §6). A nil field means that capability was not
// supplied; atoms that need one fail with MissingCapabilityError rather
// than panicking on a nil call.
type Capabilities struct {
	Fetch FetchFunc
	Store StoreCapability
	LLM   LLMCapability
	Agent AgentRunFunc
}

// FetchRequest carries the optional init fields of http.fetch(url, init?).
type FetchRequest struct {
	Method  string
	Headers map[string]string
	Body    any
}

// FetchFunc implements capabilities.fetch(url, init?) -> any.
type FetchFunc func(ctx context.Context, url string, req FetchRequest) (any, error)

// StoreCapability implements capabilities.store.{get,set,query,vectorSearch}.
type StoreCapability interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
	Query(ctx context.Context, q any) ([]any, error)
	VectorSearch(ctx context.Context, vec []float64) ([]any, error)
}

// LLMCapability implements capabilities.llm.{predict,embed}.
type LLMCapability interface {
	Predict(ctx context.Context, prompt string, options map[string]any) (string, error)
	Embed(ctx context.Context, text string) ([]float64, error)
}

// AgentRunFunc implements the host-defined recursive agent.run invocation.
type AgentRunFunc func(ctx context.Context, agentID string, input any) (any, error)

// RuntimeContext is the per-run mutable environment of spec.md §3. It is
// created once by VM.Run and mutated only by the atom currently
// dispatched; flow atoms thread the same *RuntimeContext through nested
// dispatches, swapping only State (and, during a `map`, Args is left
// untouched per the spec — only state gets the loop variable binding).
type RuntimeContext struct {
	ctx          context.Context
	Fuel         int
	Args         map[string]any
	State        *Scope
	Capabilities Capabilities
	Resolver     *Registry
	Output       any
	OutputSet    bool
	RunID        string
	vm           *VM
}

// Context returns the host-supplied context.Context this run was started
// with, for cancellation checks — the spec defines no cancellation token
// of its own, but layering context.Context cancellation on top of it is
// the systems-language addition spec.md §9 calls for (see SPEC_FULL.md §5.4).
func (rc *RuntimeContext) Context() context.Context {
	if rc.ctx == nil {
		return context.Background()
	}
	return rc.ctx
}

// withChildScope runs body with rc.State swapped for a fresh child scope,
// restoring the parent scope on return — the Go expression of spec.md
// §4.3's "child scope shares args/capabilities/resolver/fuel but owns a
// fresh state". Operating on the same *RuntimeContext (rather than a
// struct copy) is what makes fuel spending and `output` visible to every
// enclosing frame without any explicit propagation step: scope/map/if/while
// swap rc.State in and back out; try/catch deliberately do not call this,
// since §4.5 has catch write into the enclosing scope so a later `return`
// can see state.error and whatever catch bound.
func withChildScope(rc *RuntimeContext, body func() error) error {
	parent := rc.State
	rc.State = parent.NewChildScope()
	defer func() { rc.State = parent }()
	return body()
}

// spendFuel decrements fuel by one, per step dispatched by seq/while
// (spec.md §5). It never goes negative in the accounting sense — callers
// check before spending — but the field itself simply decreases
// monotonically.
func (rc *RuntimeContext) spendFuel() {
	rc.Fuel--
}

// setOutput records the terminal value produced by `return`. Once set, no
// further seq-body steps execute in this run (spec.md §3 invariant 4).
func (rc *RuntimeContext) setOutput(v any) {
	rc.Output = v
	rc.OutputSet = true
}

// RunOptions configures a single VM.Run invocation (spec.md §6).
type RunOptions struct {
	Fuel         int
	Capabilities Capabilities
}

// RunResult is returned by VM.Run. Returning both Output and FuelUsed
// resolves the open question in spec.md §9 ("Open question — fuelUsed in
// return value"): a faithful core returns a well-defined fuel-accounting
// contract rather than leave fuelUsed to be guessed at by callers poking
// at ctx.output.
type RunResult struct {
	Output   any
	FuelUsed int
	RunID    string
}
