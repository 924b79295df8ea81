package dag

import "context"

// SkipPredicate reports whether a task's work is already done. An error
// means the answer is unknown and fails the task.
type SkipPredicate func(ctx context.Context) (bool, error)

// Action performs a task's work.
type Action func(ctx context.Context) error

// Task is a single named unit of work.
type Task struct {
	Name        string
	Description string
	Group       string
	// DependsOn lists hard dependencies: they are pulled into any plan
	// containing this task and must succeed (or be skipped) before it runs.
	DependsOn []string
	// MustRunAfter lists ordering-only predecessors. They constrain order
	// when both tasks are planned but never pull a task into a plan, and
	// their failure does not block this task.
	MustRunAfter []string
	// Skip is nil when the task always runs.
	Skip SkipPredicate
	// SkipPath is the artifact Skip checks, kept for display.
	SkipPath string
	// Action is nil for aggregate tasks, which succeed immediately.
	Action Action
	// Locks are artifact paths serialized across concurrently running tasks.
	Locks []string
}

// Graph is a validated, acyclic collection of tasks. It is immutable once
// built and safe for concurrent reads.
type Graph struct {
	// tasks keeps declaration order.
	tasks []*Task
	nodes map[string]*node
}

type node struct {
	task *Task
	// index is the declaration position, used to break ordering ties.
	index int
	// deps are hard predecessors; after are ordering-only predecessors.
	deps  []*node
	after []*node
}
