package app

import (
	"context"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/dag"
	"github.com/specialistvlad/bindforge/internal/executor"
)

// Run plans the configured targets, executes them and writes the report.
// The returned report is nil only when planning failed.
func (a *App) Run(ctx context.Context) (*executor.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	plan, err := a.graph.Plan(a.targets()...)
	if err != nil {
		return nil, err
	}
	a.logger.Info("▶️ Planned tasks.", "targets", plan.Targets, "tasks", plan.Names())

	exec := executor.New(executor.Options{
		Workers:           a.config.WorkerCount,
		ContinueOnFailure: a.config.ContinueOnFailure,
		Locks:             a.locks,
	})
	report := exec.Run(ctx, plan)

	if err := writeReport(a.outW, report); err != nil {
		a.logger.Warn("Failed to write report.", "error", err)
	}
	if err := report.Err(); err != nil {
		return report, err
	}
	a.logger.Debug("App.Run method finished.")
	return report, nil
}

// Plan writes the execution order for the configured targets.
func (a *App) Plan(context.Context) (*dag.Plan, error) {
	plan, err := a.graph.Plan(a.targets()...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Plan computed.", "targets", plan.Targets, "tasks", plan.Len())
	return plan, writePlan(a.outW, plan)
}

// Tasks writes every declared task with its edges.
func (a *App) Tasks(context.Context) error {
	return writeTasks(a.outW, a.graph)
}
