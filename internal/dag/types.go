package dag

import (
	"errors"
	"sync/atomic"

	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// ErrUnknownTask is returned when a requested task is not in the graph.
var ErrUnknownTask = errors.New("unknown task")

// ErrSkipped marks a task that did not run because a prerequisite failed or
// the run was cancelled.
var ErrSkipped = errors.New("skipped")

// State is the lifecycle state of a node within one run.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Graph is the static task topology. It is never mutated after Build.
type Graph struct {
	Nodes map[string]*Node
}

// Node is a single task in the graph.
type Node struct {
	ID   nodeid.Address
	Task *registry.RegisteredTask
	// Deps are the prerequisites in declaration order.
	Deps []*Node
	// Dependents are the nodes that list this node as a prerequisite.
	Dependents []*Node
}

// runNode is the per-run state of a node.
type runNode struct {
	*Node
	depCount atomic.Int32
	state    atomic.Int32
	err      error
	// blockedBy is the first prerequisite that did not succeed.
	blockedBy atomic.Pointer[runNode]
}

func (n *runNode) State() State {
	return State(n.state.Load())
}
