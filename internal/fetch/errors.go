package fetch

import (
	"errors"
	"fmt"
)

// ErrUnsupportedScheme is returned for URIs whose scheme has no transport.
var ErrUnsupportedScheme = errors.New("unsupported URI scheme")

// DownloadError classifies every failure of a fetch: network, non-success
// status, or local write. It is always fatal to the owning task.
type DownloadError struct {
	URI         string
	Destination string
	// StatusCode is the HTTP status when the remote answered, zero otherwise.
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s -> %s: status %d: %v", e.URI, e.Destination, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("download %s -> %s: %v", e.URI, e.Destination, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
