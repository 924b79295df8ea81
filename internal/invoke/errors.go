package invoke

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the program or a referenced script does not exist.
	ErrNotFound = errors.New("program not found")
	// ErrSpawn means the process could not be started.
	ErrSpawn = errors.New("process could not be started")
	// ErrExit means the process ran and exited with a non-zero status.
	ErrExit = errors.New("process exited with non-zero status")
)

// ProcessError describes a failed invocation.
type ProcessError struct {
	Kind       error
	Command    []string
	Dir        string
	ExitCode   int
	StderrTail string
	Err        error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, strings.Join(e.Command, " "))
	if e.Dir != "" {
		fmt.Fprintf(&b, " (in %s)", e.Dir)
	}
	if errors.Is(e.Kind, ErrExit) {
		fmt.Fprintf(&b, ": exit code %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProcessError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
