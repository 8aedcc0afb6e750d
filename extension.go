package agent

import "context"

// Extension provides hooks into atom dispatch — the middleware pattern of
// the teacher's Extension interface (extension.go), generalized from
// wrapping executor resolve/update to wrapping every atom's Dispatch.
// VM.Use registers one, ordered by Order() like the teacher's
// UseExtension/sort.Slice.
type Extension interface {
	Name() string
	Order() int

	// Wrap intercepts a single atom dispatch. next performs the actual
	// validate+timeout+exec+bind sequence; Wrap may run code before/after
	// or short-circuit entirely.
	Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnError observes a dispatch error after Wrap has returned it.
	OnError(err error, op *Operation)

	// OnRunStart/OnRunEnd bracket a whole VM.Run call.
	OnRunStart(rc *RuntimeContext, ast Step)
	OnRunEnd(rc *RuntimeContext, result RunResult, err error)

	// OnPanic observes a recovered panic from an atom's exec procedure.
	OnPanic(op *Operation, recovered any, stack []byte)
}

// BaseExtension provides no-op defaults so concrete extensions only
// override the hooks they need, per the teacher's BaseExtension.
type BaseExtension struct {
	name  string
	order int
}

// NewBaseExtension creates a base extension with the given name and
// default order 100 (runs after any extension registered with a lower
// Order()).
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name, order: 100}
}

func (e *BaseExtension) Name() string  { return e.name }
func (e *BaseExtension) Order() int    { return e.order }
func (e *BaseExtension) SetOrder(n int) { e.order = n }

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}
func (e *BaseExtension) OnError(err error, op *Operation)                {}
func (e *BaseExtension) OnRunStart(rc *RuntimeContext, ast Step)         {}
func (e *BaseExtension) OnRunEnd(rc *RuntimeContext, result RunResult, err error) {}
func (e *BaseExtension) OnPanic(op *Operation, recovered any, stack []byte)       {}

// Operation describes the atom dispatch an extension is wrapping.
type Operation struct {
	Op   OpCode
	Step Step
	RC   *RuntimeContext
}
