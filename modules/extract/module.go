package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/bindforge/internal/archive"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of an `extract` action block.
type Input struct {
	Archive     string `hcl:"archive"`
	Destination string `hcl:"destination"`
	Include     string `hcl:"include,optional"`
	StripPrefix string `hcl:"strip_prefix,optional"`
}

// Build binds an extraction to the configured Extractor.
func Build(input any, caps registry.Capabilities) (*registry.Prepared, error) {
	in := input.(*Input)
	if in.Archive == "" || in.Destination == "" {
		return nil, errors.New("archive and destination must not be empty")
	}
	if caps.Extractor == nil {
		return nil, errors.New("no extractor configured")
	}

	req := archive.Request{
		Archive:     in.Archive,
		Destination: in.Destination,
		Include:     in.Include,
		StripPrefix: in.StripPrefix,
	}
	run := func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		n, err := caps.Extractor.Extract(ctx, req)
		if err != nil {
			return fmt.Errorf("extract %s: %w", in.Archive, err)
		}
		logger.Info("📦 Extracted archive.", "archive", in.Archive, "destination", in.Destination, "files", n)
		return nil
	}
	// The archive is read while its downloader may still hold it.
	return &registry.Prepared{Run: run, Locks: []string{in.Archive, in.Destination}}, nil
}

// Register registers the action kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("extract", &registry.RegisteredAction{
		NewInput: func() any { return new(Input) },
		Build:    Build,
	})
}
