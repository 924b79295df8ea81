package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// Prepared is an action bound to its decoded input.
type Prepared struct {
	Run func(ctx context.Context) error
	// Locks are the artifact paths the action writes.
	Locks []string
}

// RegisteredAction holds the compiled Go parts of an action kind.
type RegisteredAction struct {
	// NewInput returns a pointer to a fresh input struct with `hcl` tags.
	NewInput func() any
	// Build binds a decoded input to the capabilities.
	Build func(input any, caps Capabilities) (*Prepared, error)
}

// RegisterAction registers the Go implementation of an action kind.
func (r *Registry) RegisterAction(kind string, action *RegisteredAction) {
	if _, exists := r.actions[kind]; exists {
		panic(fmt.Sprintf("action kind '%s' already registered", kind))
	}
	slog.Debug("Registering action kind.", "kind", kind)
	r.actions[kind] = action
}
