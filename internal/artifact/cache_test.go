package artifact

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deniedFS fails every Lstat with a permission error.
type deniedFS struct {
	billy.Filesystem
}

func (deniedFS) Lstat(string) (os.FileInfo, error) { return nil, fs.ErrPermission }

func TestCache_ShouldRun(t *testing.T) {
	mem := memfs.New()
	require.NoError(t, util.WriteFile(mem, "/build/openzeppelin.zip", []byte("zip"), 0o644))
	require.NoError(t, mem.MkdirAll("/src/openzeppelin", 0o755))
	c := NewCache(mem)

	t.Run("missing file must run", func(t *testing.T) {
		run, err := c.ShouldRun("/build/other.zip")
		require.NoError(t, err)
		assert.True(t, run)
	})

	t.Run("existing file is skipped", func(t *testing.T) {
		run, err := c.ShouldRun("/build/openzeppelin.zip")
		require.NoError(t, err)
		assert.False(t, run)
	})

	t.Run("existing directory is skipped", func(t *testing.T) {
		run, err := c.ShouldRun("/src/openzeppelin")
		require.NoError(t, err)
		assert.False(t, run)
	})
}

func TestCache_ShouldRun_SurfacesPermissionErrors(t *testing.T) {
	c := NewCache(deniedFS{memfs.New()})

	run, err := c.ShouldRun("/root/.web3j/web3j")
	require.Error(t, err)
	assert.False(t, run)

	var fsErr *FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, "/root/.web3j/web3j", fsErr.Path)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestCache_SkipIfExists(t *testing.T) {
	mem := memfs.New()
	c := NewCache(mem)
	ctx := ctxlog.Discard(context.Background())
	skip := c.SkipIfExists("/home/dev/.web3j/web3j")

	skipped, err := skip(ctx)
	require.NoError(t, err)
	assert.False(t, skipped)

	require.NoError(t, util.WriteFile(mem, "/home/dev/.web3j/web3j", nil, 0o755))
	skipped, err = skip(ctx)
	require.NoError(t, err)
	assert.True(t, skipped)

	_, err = NewCache(deniedFS{mem}).SkipIfExists("/x")(ctx)
	assert.Error(t, err)
}
