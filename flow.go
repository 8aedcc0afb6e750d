package agent

import (
	"time"

	"github.com/tonioloewald/agent-99/pkg/schema"
)

// Dispatch is the Atom Executor of spec.md §4.4: for the given step, it
// resolves the op's Atom, validates input, enforces the timeout, binds the
// result, and spends one unit of fuel if spendFuel is true. dispatchSeq
// passes true for every child of a seq body (seq, if, while, try, scope and
// map all run their bodies through it); VM.Run passes false for the root
// seq, so the root itself costs no fuel.
func Dispatch(step Step, rc *RuntimeContext, spendFuel bool) (any, error) {
	op := step.Op()

	atom, ok := rc.Resolver.Lookup(op)
	if !ok {
		return nil, &UnknownAtomError{Op: op}
	}

	if spendFuel {
		if rc.Fuel <= 0 {
			return nil, &OutOfFuelError{Op: op}
		}
		rc.spendFuel()
	}

	if atom.InputSchema != nil {
		input := step.InputData()
		if !validateInput(atom.InputSchema, input) {
			_, cause := atom.InputSchema.Explain(input)
			return nil, &ValidationError{Op: op, Cause: cause}
		}
	}

	exts := rc.vm.extensions()
	next := func() (any, error) {
		return runAtom(atom, step, rc)
	}
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		inner := next
		next = func() (any, error) {
			return ext.Wrap(rc.Context(), inner, &Operation{Op: op, Step: step, RC: rc})
		}
	}

	result, err := next()

	if err != nil {
		for _, ext := range exts {
			ext.OnError(err, &Operation{Op: op, Step: step, RC: rc})
		}
		return nil, err
	}

	if name, ok := step.Result(); ok {
		if _, isNull := result.(Null); isNull {
			rc.State.Set(name, nil)
		} else if result != nil {
			rc.State.Set(name, result)
		}
	}

	return result, nil
}

// Null is the sentinel an atom returns to mean "this is the defined value
// null", as opposed to a bare Go nil, which Dispatch treats as "no value
// produced" and leaves unbound (spec.md §4.4 step 4). Wrapped in the `any`
// atom.Exec returns, a Null{} is a non-nil interface value, so it survives
// to the binding check above; Dispatch then unwraps it to a real nil before
// calling State.Set, so a later lookup of the bound name sees "found, nil"
// rather than falling through to an unbound literal.
type Null struct{}

func validateInput(s schema.Schema, input map[string]any) bool {
	return s.Validate(input)
}

// runAtom executes atom.Exec subject to atom.TimeoutMs and panic recovery,
// grounded on the teacher's executeFlow: a buffered result channel raced
// against a timer via select, and a deferred recover() that converts a
// panic into a first-class error rather than crashing the host. timeoutMs
// == 0 (flow atoms) runs unbounded, since their children carry their own
// timeouts (spec.md §4.4 step 3).
func runAtom(atom Atom, step Step, rc *RuntimeContext) (result any, err error) {
	if atom.TimeoutMs <= 0 {
		return execWithPanicRecovery(atom, step, rc)
	}

	type outcome struct {
		val any
		err error
	}

	done := make(chan outcome, 1)
	go func() {
		v, e := execWithPanicRecovery(atom, step, rc)
		done <- outcome{v, e}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-time.After(time.Duration(atom.TimeoutMs) * time.Millisecond):
		return nil, &TimeoutError{Op: atom.Op, TimeoutMs: atom.TimeoutMs}
	case <-rc.Context().Done():
		return nil, rc.Context().Err()
	}
}

func execWithPanicRecovery(atom Atom, step Step, rc *RuntimeContext) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := newPanicError(atom.Op, r)
			if rc.vm != nil {
				for _, ext := range rc.vm.extensions() {
					ext.OnPanic(&Operation{Op: atom.Op, Step: step, RC: rc}, r, perr.StackTrace)
				}
			}
			err = perr
		}
	}()
	return atom.Exec(step, rc)
}

// dispatchSeq runs steps in order as an inline seq body: decrement fuel,
// check OutOfFuel, dispatch, stop on output or error (spec.md §4.5 `seq`).
// Used directly by the seq atom and, inline, by if/while/try/scope bodies.
func dispatchSeq(steps []Step, rc *RuntimeContext) error {
	for _, step := range steps {
		if rc.OutputSet {
			return nil
		}
		if _, err := Dispatch(step, rc, true); err != nil {
			return err
		}
		if rc.OutputSet {
			return nil
		}
	}
	return nil
}
