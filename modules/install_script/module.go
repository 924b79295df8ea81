package install_script

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/invoke"
	"github.com/specialistvlad/bindforge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of an `install_script` action block. The
// script is fetched from URL to Script and then run with Shell.
type Input struct {
	URL    string            `hcl:"url"`
	Script string            `hcl:"script"`
	Shell  string            `hcl:"shell,optional"`
	Args   []string          `hcl:"args,optional"`
	Env    map[string]string `hcl:"env,optional"`
}

// Build binds the installer to the configured Downloader and Invoker.
func Build(input any, caps registry.Capabilities) (*registry.Prepared, error) {
	in := input.(*Input)
	if in.URL == "" || in.Script == "" {
		return nil, errors.New("url and script must not be empty")
	}
	if caps.Downloader == nil || caps.Invoker == nil {
		return nil, errors.New("install_script needs both a downloader and a process invoker")
	}
	shell := in.Shell
	if shell == "" {
		shell = "sh"
	}

	run := func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		logger.Info("⬇️ Fetching installer.", "url", in.URL, "script", in.Script)
		if err := caps.Downloader.Fetch(ctx, in.URL, in.Script); err != nil {
			return fmt.Errorf("fetch installer %s: %w", in.URL, err)
		}

		cmd := invoke.Command{
			Program: shell,
			Args:    append([]string{in.Script}, in.Args...),
			Env:     in.Env,
		}
		logger.Info("Running installer.", "command", cmd.Line())
		if _, err := caps.Invoker.Run(ctx, cmd); err != nil {
			return fmt.Errorf("run installer: %w", err)
		}
		return nil
	}
	return &registry.Prepared{Run: run, Locks: []string{in.Script}}, nil
}

// Register registers the action kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("install_script", &registry.RegisteredAction{
		NewInput: func() any { return new(Input) },
		Build:    Build,
	})
}
