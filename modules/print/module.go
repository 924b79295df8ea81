package print

import (
	"context"
	"errors"
	"sort"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `print` action block.
type Input struct {
	Message string            `hcl:"message"`
	Values  map[string]string `hcl:"values,optional"`
}

// Build returns an action that logs the message with its values as attributes.
func Build(input any, _ registry.Capabilities) (*registry.Prepared, error) {
	in := input.(*Input)
	if in.Message == "" {
		return nil, errors.New("message must not be empty")
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(in.Values))
	for k := range in.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		attrs = append(attrs, k, in.Values[k])
	}

	run := func(ctx context.Context) error {
		ctxlog.FromContext(ctx).Info(in.Message, attrs...)
		return nil
	}
	return &registry.Prepared{Run: run}, nil
}

// Register registers the action kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("print", &registry.RegisteredAction{
		NewInput: func() any { return new(Input) },
		Build:    Build,
	})
}
