package download

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	calls [][2]string
	err   error
}

func (f *fakeDownloader) Fetch(_ context.Context, uri, destination string) error {
	f.calls = append(f.calls, [2]string{uri, destination})
	return f.err
}

func TestBuild(t *testing.T) {
	dl := &fakeDownloader{}
	p, err := Build(&Input{URL: "https://example.com/oz.zip", Destination: "/build/oz.zip"}, registry.Capabilities{Downloader: dl})
	require.NoError(t, err)
	assert.Equal(t, []string{"/build/oz.zip"}, p.Locks)

	require.NoError(t, p.Run(ctxlog.Discard(context.Background())))
	assert.Equal(t, [][2]string{{"https://example.com/oz.zip", "/build/oz.zip"}}, dl.calls)
}

func TestBuild_FetchErrorIsWrapped(t *testing.T) {
	cause := errors.New("status 404")
	p, err := Build(&Input{URL: "https://example.com/x", Destination: "/x"}, registry.Capabilities{Downloader: &fakeDownloader{err: cause}})
	require.NoError(t, err)

	err = p.Run(ctxlog.Discard(context.Background()))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "download https://example.com/x")
}

func TestBuild_Validation(t *testing.T) {
	_, err := Build(&Input{URL: "https://example.com/x"}, registry.Capabilities{Downloader: &fakeDownloader{}})
	assert.Error(t, err)

	_, err = Build(&Input{URL: "https://example.com/x", Destination: "/x"}, registry.Capabilities{})
	assert.ErrorContains(t, err, "no downloader")
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	require.NoError(t, r.ValidateRegistry(ctxlog.Discard(context.Background())))
	_, ok := r.Action("download")
	assert.True(t, ok)
}
