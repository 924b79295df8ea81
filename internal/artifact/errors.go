package artifact

import "fmt"

// FilesystemError reports a filesystem failure that is neither "exists" nor
// "does not exist", e.g. a permission denial while probing an artifact.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
