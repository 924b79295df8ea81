package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/dag"
)

// ErrHalted is recorded on tasks that were not started because an earlier
// task failed.
var ErrHalted = errors.New("not started: run halted after a failure")

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, r *run, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for task := range r.ready {
		taskCtx := ctxlog.With(ctx, "taskName", task.Name, "workerID", workerID)
		r.results <- e.execute(taskCtx, r, task)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

func (e *Executor) execute(ctx context.Context, r *run, task *dag.Task) outcome {
	logger := ctxlog.FromContext(ctx)
	res := outcome{name: task.Name}

	if stop := r.stopped(ctx); stop != nil {
		res.state, res.err = Canceled, stop
		return res
	}

	unlock := e.locks.Lock(task.Locks...)
	defer unlock()

	// Lock acquisition may have waited on a task that has since failed.
	if stop := r.stopped(ctx); stop != nil {
		res.state, res.err = Canceled, stop
		return res
	}

	if task.Skip != nil {
		skip, err := task.Skip(ctx)
		if err != nil {
			logger.Error("Skip predicate failed.", "artifact", task.SkipPath, "error", err)
			res.state, res.err = Failed, fmt.Errorf("evaluate skip predicate: %w", err)
			e.noteFailure(r)
			return res
		}
		if skip {
			logger.Info("⏭️ Skipping task; artifact exists.", "artifact", task.SkipPath)
			res.state = Skipped
			return res
		}
	}

	logger.Info("▶️ Starting task.")
	res.started = true
	start := time.Now()
	err := runAction(ctx, task)
	res.duration = time.Since(start)

	if err != nil {
		logger.Error("Task failed.", "error", err, "duration", res.duration.Round(time.Millisecond))
		res.state, res.err = Failed, err
		e.noteFailure(r)
		return res
	}
	logger.Info("✅ Task succeeded.", "duration", res.duration.Round(time.Millisecond))
	res.state = Succeeded
	return res
}

// noteFailure halts the run as soon as the failure is known, before the
// coordinator has seen the result.
func (e *Executor) noteFailure(r *run) {
	if !e.continueOnFailure {
		r.halted.Store(true)
	}
}

func (r *run) stopped(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.halted.Load() {
		return ErrHalted
	}
	return nil
}

func runAction(ctx context.Context, task *dag.Task) (err error) {
	if task.Action == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, p)
		}
	}()
	return task.Action(ctx)
}
