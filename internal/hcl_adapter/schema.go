package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level content from any file.
type fileRoot struct {
	DefaultTargets *[]string   `hcl:"default_targets,optional"`
	Variables      []*Variable `hcl:"variable,block"`
	Tasks          []*Task     `hcl:"task,block"`
}

// Variable is a `variable "name" {}` block.
type Variable struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

// Task is a `task "name" {}` block. Expressions that may reference `var` or
// `path` stay undecoded until the evaluation context is complete.
type Task struct {
	Name         string         `hcl:"name,label"`
	Description  hcl.Expression `hcl:"description,optional"`
	Group        hcl.Expression `hcl:"group,optional"`
	DependsOn    []string       `hcl:"depends_on,optional"`
	MustRunAfter []string       `hcl:"must_run_after,optional"`
	SkipIfExists hcl.Expression `hcl:"skip_if_exists,optional"`
	Actions      []*Action      `hcl:"action,block"`
}

// Action is the `action "kind" {}` block nested in a task. Its body is
// decoded later into the input struct registered for the kind.
type Action struct {
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}
