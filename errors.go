package agent

import (
	"fmt"
	"runtime/debug"
)

// ValidationError reports that a step's input failed its atom's declared
// input schema.
type ValidationError struct {
	Op    OpCode
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error in %q: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("validation error in %q: input failed schema", e.Op)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// TimeoutError reports that an atom exceeded its declared TimeoutMs.
type TimeoutError struct {
	Op        OpCode
	TimeoutMs int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout error in %q: exceeded %dms", e.Op, e.TimeoutMs)
}

// OutOfFuelError reports that the fuel budget was exhausted before a step
// could be dispatched.
type OutOfFuelError struct {
	Op OpCode
}

func (e *OutOfFuelError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("out of fuel before dispatching %q", e.Op)
	}
	return "out of fuel"
}

// UnknownAtomError reports a step referencing an op not in the registry.
type UnknownAtomError struct {
	Op OpCode
}

func (e *UnknownAtomError) Error() string {
	return fmt.Sprintf("unknown atom %q", e.Op)
}

// MissingCapabilityError reports that an atom needed a capability the host
// did not provide.
type MissingCapabilityError struct {
	Op         OpCode
	Capability string
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("missing capability %q required by %q", e.Capability, e.Op)
}

// BadRootError reports that the root AST node was not a seq.
type BadRootError struct {
	Op OpCode
}

func (e *BadRootError) Error() string {
	return fmt.Sprintf("bad root: expected op %q, got %q", OpSeq, e.Op)
}

// ExprError reports a malformed expression in the Expression Evaluator.
type ExprError struct {
	Expr  string
	Cause error
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("expression error in %q: %v", e.Expr, e.Cause)
}

func (e *ExprError) Unwrap() error { return e.Cause }

// PanicError wraps a recovered panic from an atom's exec procedure. It is
// not one of the seven spec error kinds and is never caught by try/catch —
// like OutOfFuelError and BadRootError it always propagates to the caller
// of Run.
type PanicError struct {
	Op         OpCode
	Recovered  any
	StackTrace []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in atom %q: %v", e.Op, e.Recovered)
}

func newPanicError(op OpCode, recovered any) *PanicError {
	return &PanicError{Op: op, Recovered: recovered, StackTrace: debug.Stack()}
}

// isFatal reports whether an error kind must propagate through an
// enclosing try/catch rather than be bound to state.error, per spec §7.
func isFatal(err error) bool {
	switch err.(type) {
	case *OutOfFuelError, *BadRootError, *PanicError:
		return true
	default:
		return false
	}
}
