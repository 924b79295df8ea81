package config

import "github.com/zclconf/go-cty/cty"

// Model is the unified, format-agnostic representation of a pipeline.
type Model struct {
	// DefaultTargets are planned when the caller names no targets.
	DefaultTargets []string
	Variables      map[string]*Variable
	// Tasks are kept in declaration order; the order breaks scheduling ties.
	Tasks []*Task
}

// Task finds a task by name.
func (m *Model) Task(name string) (*Task, bool) {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Variable is a pipeline input with its resolved value.
type Variable struct {
	Name        string
	Description string
	Value       cty.Value
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Name         string
	Description  string
	Group        string
	DependsOn    []string
	MustRunAfter []string
	// SkipIfExists names an artifact whose presence skips the task.
	SkipIfExists string
	// Action is nil for aggregate tasks that only group dependencies.
	Action *Action
	// Source is a human-readable location such as "pipeline.hcl:12".
	Source string
}

// Action is the `action` block of a task. Its body stays undecoded until
// the registry supplies the input struct for Kind.
type Action struct {
	Kind string
	// Decode binds the action body to target, a pointer to the action's
	// input struct.
	Decode func(target any) error
}
