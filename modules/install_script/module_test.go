package install_script

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/invoke"
	"github.com/specialistvlad/bindforge/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	calls []string
	err   error
}

func (f *fakeDownloader) Fetch(_ context.Context, uri, destination string) error {
	f.calls = append(f.calls, uri+" -> "+destination)
	return f.err
}

type fakeInvoker struct {
	got []invoke.Command
}

func (f *fakeInvoker) Run(_ context.Context, c invoke.Command) (*invoke.Result, error) {
	f.got = append(f.got, c)
	return &invoke.Result{}, nil
}

func TestBuild_FetchesThenRuns(t *testing.T) {
	dl, inv := &fakeDownloader{}, &fakeInvoker{}
	p, err := Build(&Input{URL: "https://get.web3j.io", Script: "/build/web3j-install.sh", Args: []string{"-v"}},
		registry.Capabilities{Downloader: dl, Invoker: inv})
	require.NoError(t, err)
	assert.Equal(t, []string{"/build/web3j-install.sh"}, p.Locks)

	require.NoError(t, p.Run(ctxlog.Discard(context.Background())))
	assert.Equal(t, []string{"https://get.web3j.io -> /build/web3j-install.sh"}, dl.calls)
	require.Len(t, inv.got, 1)
	assert.Equal(t, "sh", inv.got[0].Program)
	assert.Equal(t, []string{"/build/web3j-install.sh", "-v"}, inv.got[0].Args)
}

func TestBuild_FetchFailureSkipsInstaller(t *testing.T) {
	cause := errors.New("connection refused")
	inv := &fakeInvoker{}
	p, err := Build(&Input{URL: "https://get.web3j.io", Script: "/s.sh", Shell: "bash"},
		registry.Capabilities{Downloader: &fakeDownloader{err: cause}, Invoker: inv})
	require.NoError(t, err)

	assert.ErrorIs(t, p.Run(ctxlog.Discard(context.Background())), cause)
	assert.Empty(t, inv.got)
}

func TestBuild_Validation(t *testing.T) {
	_, err := Build(&Input{URL: "https://get.web3j.io"}, registry.Capabilities{Downloader: &fakeDownloader{}, Invoker: &fakeInvoker{}})
	assert.Error(t, err)
	_, err = Build(&Input{URL: "u", Script: "s"}, registry.Capabilities{Downloader: &fakeDownloader{}})
	assert.Error(t, err)
}
