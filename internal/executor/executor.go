package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/bindforge/internal/artifact"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/dag"
)

// Options configures an Executor.
type Options struct {
	// Workers is the pool size; zero means runtime.NumCPU().
	Workers int
	// ContinueOnFailure keeps starting tasks that are not blocked by a
	// failed hard dependency.
	ContinueOnFailure bool
	// Locks serializes tasks touching the same artifact paths. A nil value
	// gets a lock table private to the executor.
	Locks *artifact.PathLocks
}

// Executor runs plans. It is safe to reuse for sequential runs.
type Executor struct {
	numWorkers        int
	continueOnFailure bool
	locks             *artifact.PathLocks
}

// New creates an Executor.
func New(opts Options) *Executor {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	locks := opts.Locks
	if locks == nil {
		locks = artifact.NewPathLocks()
	}
	return &Executor{
		numWorkers:        workers,
		continueOnFailure: opts.ContinueOnFailure,
		locks:             locks,
	}
}

// taskRun is the coordinator's record of one planned task.
type taskRun struct {
	task     *dag.Task
	state    State
	err      error
	cause    string
	pending  int
	duration time.Duration
}

// outcome is what a worker reports back for a task it picked up.
type outcome struct {
	name     string
	started  bool
	state    State
	err      error
	duration time.Duration
}

// run is the mutable state of a single Run call.
type run struct {
	e        *Executor
	plan     *dag.Plan
	tasks    map[string]*taskRun
	ready    chan *dag.Task
	results  chan outcome
	halted   atomic.Bool
	terminal int
}

// Run executes the plan and blocks until every planned task is terminal.
// Canceling ctx stops new tasks from starting and is passed to running
// actions.
func (e *Executor) Run(ctx context.Context, plan *dag.Plan) *Report {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	r := &run{
		e:       e,
		plan:    plan,
		tasks:   make(map[string]*taskRun, plan.Len()),
		ready:   make(chan *dag.Task, plan.Len()),
		results: make(chan outcome, plan.Len()),
	}
	for _, t := range plan.Order {
		r.tasks[t.Name] = &taskRun{task: t, state: Pending, pending: len(plan.Predecessors(t.Name))}
	}

	var wg sync.WaitGroup
	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			e.worker(ctx, r, workerID)
		}(i)
	}

	logger.Info("🚀 Executing plan.", "tasks", plan.Len(), "workers", e.numWorkers)
	for _, t := range plan.Order {
		if r.tasks[t.Name].pending == 0 {
			r.release(ctx, t.Name)
		}
	}

	for r.terminal < plan.Len() {
		res := <-r.results
		r.apply(ctx, res)
	}
	close(r.ready)
	wg.Wait()

	report := r.report(time.Since(start))
	logger.Info("🏁 Plan finished.", "succeeded", report.Succeeded(), "duration", report.Duration.Round(time.Millisecond))
	return report
}

// release decides the fate of a task whose predecessors are all terminal.
func (r *run) release(ctx context.Context, name string) {
	logger := ctxlog.FromContext(ctx).With("taskName", name)
	tr := r.tasks[name]

	var canceledBy string
	for _, dep := range r.plan.HardDependencies(name) {
		switch r.tasks[dep].state {
		case Failed, Blocked:
			logger.Warn("Task blocked by upstream failure.", "dependency", dep)
			r.finish(ctx, name, Blocked, fmt.Errorf("blocked by %s", dep), dep)
			return
		case Canceled:
			if canceledBy == "" {
				canceledBy = dep
			}
		}
	}

	switch {
	case canceledBy != "":
		r.finish(ctx, name, Canceled, fmt.Errorf("dependency %s was canceled", canceledBy), canceledBy)
	case ctx.Err() != nil:
		r.finish(ctx, name, Canceled, ctx.Err(), "")
	case r.halted.Load():
		logger.Debug("Run halted; not starting task.")
		r.finish(ctx, name, Canceled, ErrHalted, "")
	default:
		logger.Debug("Dispatching task.", "locks", tr.task.Locks)
		r.ready <- tr.task
	}
}

// apply records a worker outcome.
func (r *run) apply(ctx context.Context, res outcome) {
	tr := r.tasks[res.name]
	if res.started {
		r.mustTransition(res.name, Running)
	}
	tr.duration = res.duration
	if res.state == Failed && !r.e.continueOnFailure {
		r.halted.Store(true)
	}
	r.finish(ctx, res.name, res.state, res.err, "")
}

// finish moves a task to a terminal state and releases its successors.
func (r *run) finish(ctx context.Context, name string, to State, err error, cause string) {
	tr := r.tasks[name]
	r.mustTransition(name, to)
	tr.err = err
	tr.cause = cause
	r.terminal++

	for _, succ := range r.plan.Successors(name) {
		s := r.tasks[succ]
		s.pending--
		if s.pending == 0 {
			r.release(ctx, succ)
		}
	}
}

func (r *run) mustTransition(name string, to State) {
	if err := transition(name, &r.tasks[name].state, to); err != nil {
		panic(err)
	}
}
