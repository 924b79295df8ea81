package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `download` action block.
type Input struct {
	URL         string `hcl:"url"`
	Destination string `hcl:"destination"`
}

// Build binds a download to the configured Downloader.
func Build(input any, caps registry.Capabilities) (*registry.Prepared, error) {
	in := input.(*Input)
	if in.URL == "" || in.Destination == "" {
		return nil, errors.New("url and destination must not be empty")
	}
	if caps.Downloader == nil {
		return nil, errors.New("no downloader configured")
	}

	run := func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		logger.Info("⬇️ Downloading.", "url", in.URL, "destination", in.Destination)
		if err := caps.Downloader.Fetch(ctx, in.URL, in.Destination); err != nil {
			return fmt.Errorf("download %s: %w", in.URL, err)
		}
		return nil
	}
	return &registry.Prepared{Run: run, Locks: []string{in.Destination}}, nil
}

// Register registers the action kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("download", &registry.RegisteredAction{
		NewInput: func() any { return new(Input) },
		Build:    Build,
	})
}
