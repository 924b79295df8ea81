package exec

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

// Input defines the arguments of an `exec` action block.
type Input struct {
	Command        []string          `hcl:"command"`
	WorkingDir     string            `hcl:"working_dir,optional"`
	Env            map[string]string `hcl:"env,optional"`
	MakeExecutable string            `hcl:"make_executable,optional"`
	// Outputs are paths the command writes, serialized against other tasks.
	Outputs []string `hcl:"outputs,optional"`
}

// Build binds the command to the configured Invoker.
func Build(input any, caps registry.Capabilities) (*registry.Prepared, error) {
	in := input.(*Input)
	if len(in.Command) == 0 || in.Command[0] == "" {
		return nil, errors.New("command must name a program")
	}
	if caps.Invoker == nil {
		return nil, errors.New("no process invoker configured")
	}

	cmd := invoke.Command{
		Program:        in.Command[0],
		Args:           in.Command[1:],
		Dir:            in.WorkingDir,
		Env:            in.Env,
		MakeExecutable: in.MakeExecutable,
	}
	run := func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		logger.Info("Running command.", "command", cmd.Line(), "dir", cmd.Dir)
		res, err := caps.Invoker.Run(ctx, cmd)
		if err != nil {
			return fmt.Errorf("exec %s: %w", cmd.Program, err)
		}
		logger.Debug("Command finished.", "exitCode", res.ExitCode)
		return nil
	}
	return &registry.Prepared{Run: run, Locks: in.Outputs}, nil
}

// Register registers the action kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("exec", &registry.RegisteredAction{
		NewInput: func() any { return new(Input) },
		Build:    Build,
	})
}
