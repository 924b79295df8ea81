package dag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is the root of every graph and pipeline definition error.
	ErrConfiguration = errors.New("configuration error")
	ErrCycle         = errors.New("cycle detected")
	ErrUnknownTask   = errors.New("unknown task")
	ErrDuplicateTask = errors.New("duplicate task")
	ErrInvalidAction = errors.New("invalid action")
)

// ConfigError wraps deterministic graph validation failures. Every
// ConfigError matches ErrConfiguration as well as its Kind.
type ConfigError struct {
	Kind error
	Msg  string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *ConfigError) Unwrap() []error {
	if e.Kind == ErrConfiguration {
		return []error{e.Kind}
	}
	return []error{e.Kind, ErrConfiguration}
}

func configErrorf(kind error, format string, args ...any) error {
	return &ConfigError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &ConfigError{Kind: ErrCycle, Msg: strings.Join(path, " -> ")}
}
