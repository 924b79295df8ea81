package executor

import "fmt"

// State is the lifecycle state of a planned task.
type State string

const (
	Pending   State = "PENDING"
	Skipped   State = "SKIPPED"
	Running   State = "RUNNING"
	Succeeded State = "SUCCEEDED"
	Failed    State = "FAILED"
	// Blocked tasks never started because a hard dependency failed or was
	// itself blocked.
	Blocked State = "BLOCKED"
	// Canceled tasks never started because the run halted after a failure
	// or the caller canceled it.
	Canceled State = "CANCELED"
)

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	switch s {
	case Skipped, Succeeded, Failed, Blocked, Canceled:
		return true
	default:
		return false
	}
}

// IsSuccessful reports whether s satisfies a hard dependency.
func (s State) IsSuccessful() bool {
	return s == Succeeded || s == Skipped
}

// Attempted reports whether the task got as far as its skip predicate.
func (s State) Attempted() bool {
	return s != Pending && s != Blocked && s != Canceled
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case Pending:
		// FAILED straight from PENDING is a skip predicate that errored.
		return to == Running || to == Skipped || to == Failed || to == Blocked || to == Canceled
	case Running:
		return to == Succeeded || to == Failed
	default:
		return false
	}
}

func transition(name string, cur *State, to State) error {
	if !isAllowedTransition(*cur, to) {
		return fmt.Errorf("disallowed transition for %q: %s -> %s", name, *cur, to)
	}
	*cur = to
	return nil
}
