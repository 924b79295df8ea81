package exec

import (
	"context"
	"testing"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/invoke"
	"github.com/specialistvlad/bindforge/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	got []invoke.Command
	err error
}

func (f *fakeInvoker) Run(_ context.Context, c invoke.Command) (*invoke.Result, error) {
	f.got = append(f.got, c)
	if f.err != nil {
		return nil, f.err
	}
	return &invoke.Result{}, nil
}

func TestBuild(t *testing.T) {
	inv := &fakeInvoker{}
	p, err := Build(&Input{
		Command:        []string{"bash", "/work/compile_solidity.sh"},
		WorkingDir:     "/work",
		Env:            map[string]string{"SOLC_VERSION": "0.8.24"},
		MakeExecutable: "/work/compile_solidity.sh",
		Outputs:        []string{"/work/build/generated"},
	}, registry.Capabilities{Invoker: inv})
	require.NoError(t, err)
	assert.Equal(t, []string{"/work/build/generated"}, p.Locks)

	require.NoError(t, p.Run(ctxlog.Discard(context.Background())))
	require.Len(t, inv.got, 1)
	assert.Equal(t, invoke.Command{
		Program:        "bash",
		Args:           []string{"/work/compile_solidity.sh"},
		Dir:            "/work",
		Env:            map[string]string{"SOLC_VERSION": "0.8.24"},
		MakeExecutable: "/work/compile_solidity.sh",
	}, inv.got[0])
}

func TestBuild_ProcessErrorIsWrapped(t *testing.T) {
	pe := &invoke.ProcessError{Kind: invoke.ErrExit, Command: []string{"bash"}, ExitCode: 1}
	p, err := Build(&Input{Command: []string{"bash"}}, registry.Capabilities{Invoker: &fakeInvoker{err: pe}})
	require.NoError(t, err)

	err = p.Run(ctxlog.Discard(context.Background()))
	assert.ErrorIs(t, err, invoke.ErrExit)
	var got *invoke.ProcessError
	assert.ErrorAs(t, err, &got)
}

func TestBuild_Validation(t *testing.T) {
	_, err := Build(&Input{}, registry.Capabilities{Invoker: &fakeInvoker{}})
	assert.ErrorContains(t, err, "command must name a program")
	_, err = Build(&Input{Command: []string{"bash"}}, registry.Capabilities{})
	assert.ErrorContains(t, err, "no process invoker")
}
