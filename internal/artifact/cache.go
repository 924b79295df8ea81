package artifact

import (
	"context"
	"errors"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
)

// Cache answers "has this artifact already been produced?" against a
// billy.Filesystem.
type Cache struct {
	fs billy.Filesystem
}

// NewCache returns a cache over the given filesystem. A nil filesystem means
// the host filesystem with absolute paths.
func NewCache(filesystem billy.Filesystem) *Cache {
	if filesystem == nil {
		filesystem = osfs.New("/")
	}
	return &Cache{fs: filesystem}
}

// ShouldRun reports true iff path does not exist. Errors other than
// not-exist are returned as *FilesystemError so that callers fail the task
// instead of guessing.
func (c *Cache) ShouldRun(path string) (bool, error) {
	_, err := c.fs.Lstat(path)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	default:
		return false, &FilesystemError{Op: "stat", Path: path, Err: err}
	}
}

// SkipIfExists adapts ShouldRun into a skip predicate: it reports true
// ("already satisfied") when the artifact exists.
func (c *Cache) SkipIfExists(path string) func(ctx context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		run, err := c.ShouldRun(path)
		if err != nil {
			return false, err
		}
		if !run {
			ctxlog.FromContext(ctx).Debug("Artifact present, task can be skipped.", "path", path)
		}
		return !run, nil
	}
}
