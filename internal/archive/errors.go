package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat means the archive is neither zip nor (gzipped) tar.
	ErrUnknownFormat = errors.New("unknown archive format")
	// ErrCorrupt means the archive could not be read.
	ErrCorrupt = errors.New("corrupt archive")
	// ErrNoMatches means no entry matched the include pattern.
	ErrNoMatches = errors.New("no archive entries matched")
	// ErrUnsafePath means a rewritten entry path would land outside the destination.
	ErrUnsafePath = errors.New("entry path escapes destination")
	// ErrWrite means an extracted file could not be written.
	ErrWrite = errors.New("write failed")
)

// ExtractError reports a failed extraction. Kind is one of the sentinels
// above; Entry is set when a single archive entry caused the failure.
type ExtractError struct {
	Archive string
	Entry   string
	Kind    error
	Err     error
}

func (e *ExtractError) Error() string {
	msg := fmt.Sprintf("extract %s: %v", e.Archive, e.Kind)
	if e.Entry != "" {
		msg += fmt.Sprintf(" (entry %q)", e.Entry)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *ExtractError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
