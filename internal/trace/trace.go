// Package trace builds an ASCII rendering of a run's atom dispatch tree,
// grounded on the teacher's GraphDebugExtension (extensions/graph_debug.go)
// — the same treedrawer-based rendering, repurposed from a reactive
// dependency graph to the nested Dispatch calls of a single VM.Run.
package trace

import (
	"context"
	"sync"

	"github.com/m1gwings/treedrawer/tree"

	agent "github.com/tonioloewald/agent-99"
)

type dispatchNode struct {
	op       string
	failed   bool
	children []*dispatchNode
}

func (n *dispatchNode) label() string {
	if n.failed {
		return n.op + " [error]"
	}
	return n.op
}

type runState struct {
	mu    sync.Mutex
	root  *dispatchNode
	stack []*dispatchNode
}

// Recorder is a VM extension recording one dispatch tree per run, keyed by
// RuntimeContext.RunID. It never observes capability payloads — only op
// codes and pass/fail — so it is safe to attach in production.
type Recorder struct {
	agent.BaseExtension

	mu   sync.Mutex
	runs map[string]*runState
	done map[string]*dispatchNode
}

// NewRecorder creates an empty dispatch-tree recorder.
func NewRecorder() *Recorder {
	r := &Recorder{
		BaseExtension: agent.NewBaseExtension("trace"),
		runs:          make(map[string]*runState),
		done:          make(map[string]*dispatchNode),
	}
	r.SetOrder(0) // run first so every other extension's dispatch is nested inside ours
	return r
}

func (r *Recorder) OnRunStart(rc *agent.RuntimeContext, ast agent.Step) {
	root := &dispatchNode{op: string(ast.Op())}
	r.mu.Lock()
	r.runs[rc.RunID] = &runState{root: root, stack: []*dispatchNode{root}}
	r.mu.Unlock()
}

func (r *Recorder) Wrap(ctx context.Context, next func() (any, error), op *agent.Operation) (any, error) {
	r.mu.Lock()
	st := r.runs[op.RC.RunID]
	r.mu.Unlock()
	if st == nil {
		return next()
	}

	st.mu.Lock()
	parent := st.stack[len(st.stack)-1]
	child := &dispatchNode{op: string(op.Op)}
	parent.children = append(parent.children, child)
	st.stack = append(st.stack, child)
	st.mu.Unlock()

	result, err := next()

	st.mu.Lock()
	child.failed = err != nil
	st.stack = st.stack[:len(st.stack)-1]
	st.mu.Unlock()

	return result, err
}

func (r *Recorder) OnRunEnd(rc *agent.RuntimeContext, result agent.RunResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.runs[rc.RunID]
	if !ok {
		return
	}
	delete(r.runs, rc.RunID)
	r.done[rc.RunID] = st.root
}

// Tree renders the completed dispatch tree for runID as ASCII art. ok is
// false if no run with that id has finished (or ever started) on this
// recorder.
func (r *Recorder) Tree(runID string) (rendered string, ok bool) {
	r.mu.Lock()
	root, found := r.done[runID]
	r.mu.Unlock()
	if !found {
		return "", false
	}

	t := tree.NewTree(tree.NodeString(root.label()))
	for _, c := range root.children {
		attach(t, c)
	}
	return t.String(), true
}

func attach(parent *tree.Tree, n *dispatchNode) {
	child := parent.AddChild(tree.NodeString(n.label()))
	for _, c := range n.children {
		attach(child, c)
	}
}
