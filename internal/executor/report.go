package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TaskResult is the final state of one planned task.
type TaskResult struct {
	Name  string
	State State
	Err   error
	// Cause names the dependency that blocked or canceled the task.
	Cause    string
	Duration time.Duration
}

// Report is the outcome of a Run. Results follow the plan order.
type Report struct {
	Results  []TaskResult
	Duration time.Duration
}

func (r *run) report(d time.Duration) *Report {
	rep := &Report{Duration: d, Results: make([]TaskResult, 0, len(r.tasks))}
	for _, t := range r.plan.Order {
		tr := r.tasks[t.Name]
		rep.Results = append(rep.Results, TaskResult{
			Name:     t.Name,
			State:    tr.state,
			Err:      tr.err,
			Cause:    tr.cause,
			Duration: tr.duration,
		})
	}
	return rep
}

// Succeeded reports whether every planned task succeeded or was skipped.
func (r *Report) Succeeded() bool {
	for _, res := range r.Results {
		if !res.State.IsSuccessful() {
			return false
		}
	}
	return true
}

// Result returns the result of the named task.
func (r *Report) Result(name string) (TaskResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return TaskResult{}, false
}

// State returns the final state of the named task, or Pending if the task
// was not planned.
func (r *Report) State(name string) State {
	res, ok := r.Result(name)
	if !ok {
		return Pending
	}
	return res.State
}

// InState returns the results in any of the given states, in plan order.
func (r *Report) InState(states ...State) []TaskResult {
	var out []TaskResult
	for _, res := range r.Results {
		for _, s := range states {
			if res.State == s {
				out = append(out, res)
				break
			}
		}
	}
	return out
}

// Failed returns the tasks that ran, or evaluated their skip predicate, and failed.
func (r *Report) Failed() []TaskResult { return r.InState(Failed) }

// NotAttempted returns the blocked and canceled tasks.
func (r *Report) NotAttempted() []TaskResult { return r.InState(Blocked, Canceled) }

// Counts returns the number of tasks per final state.
func (r *Report) Counts() map[State]int {
	counts := make(map[State]int)
	for _, res := range r.Results {
		counts[res.State]++
	}
	return counts
}

// Err returns nil for a successful run. Otherwise it wraps the first
// failure in plan order, or the cancellation cause when nothing failed.
func (r *Report) Err() error {
	if failed := r.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, f := range failed {
			names[i] = f.Name
		}
		return fmt.Errorf("execution failed for %s: %w", strings.Join(names, ", "), failed[0].Err)
	}
	if skipped := r.NotAttempted(); len(skipped) > 0 {
		for _, res := range skipped {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return fmt.Errorf("execution canceled with %d tasks not attempted: %w", len(skipped), res.Err)
			}
		}
		return fmt.Errorf("execution incomplete: %d tasks not attempted", len(skipped))
	}
	return nil
}
