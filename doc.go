// Package agent is an embeddable virtual machine for declarative agent
// programs: a JSON-serializable AST of typed operations ("atoms") combined
// by flow-control atoms (seq, if, while, try, scope, return), executed
// under a fuel budget, per-atom timeouts, lexically scoped mutable state,
// and a pluggable capability surface (HTTP, key-value store, vector
// search, LLM, recursive sub-agent invocation).
//
// # Basic usage
//
//	vm := agent.NewVM(nil)
//
//	ast := agent.Step{
//		"op": "seq",
//		"steps": []any{
//			agent.Step{"op": "var.set", "key": "greeting", "value": "hi"},
//			agent.Step{"op": "return", "schema": []any{"greeting"}},
//		},
//	}
//
//	result, err := vm.Run(context.Background(), ast, nil, agent.RunOptions{Fuel: 100})
//	// result.Output == map[string]any{"greeting": "hi"}
//
// # Capabilities
//
// Atoms that reach outside the VM (http.fetch, store.*, llm.*, agent.run)
// read their effect from RunOptions.Capabilities. An atom whose capability
// is nil fails with MissingCapabilityError rather than panicking:
//
//	store, err := sqlitestore.Open(db)
//	if err != nil {
//		return err
//	}
//	result, err := vm.Run(ctx, ast, args, agent.RunOptions{
//		Fuel: 1000,
//		Capabilities: agent.Capabilities{
//			Fetch: httpcap.New(http.DefaultClient),
//			Store: store,
//		},
//	})
//
// # Custom atoms
//
// NewVM accepts a map of custom atoms keyed by op code; a custom atom
// overrides a built-in of the same op code:
//
//	vm := agent.NewVM(map[agent.OpCode]agent.Atom{
//		"greet": {Op: "greet", Exec: func(step agent.Step, rc *agent.RuntimeContext) (any, error) {
//			return "hello, " + rc.Args["name"].(string), nil
//		}},
//	})
//
// # Extensions
//
// Extensions wrap every atom dispatch and observe run start/end and
// panics — the same cross-cutting-concerns pattern as logging, tracing,
// or metrics middleware:
//
//	vm.Use(extensions.NewLoggingExtension(slog.Default()))
package agent
