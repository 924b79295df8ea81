package dag

import (
	"context"

	"github.com/specialistvlad/bindforge/internal/artifact"
	"github.com/specialistvlad/bindforge/internal/config"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/registry"
)

// Build turns a config model into a validated Graph, binding every action
// block to its registered kind.
func Build(ctx context.Context, model *config.Model, r *registry.Registry, caps registry.Capabilities) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "tasks", len(model.Tasks))

	if caps.Cache == nil {
		caps.Cache = artifact.NewCache(nil)
	}

	tasks := make([]*Task, 0, len(model.Tasks))
	for _, ct := range model.Tasks {
		t, err := buildTask(ctx, ct, r, caps)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	logger.Debug("Build: Task binding complete.")

	g, err := New(tasks...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build: Graph construction successful.", "tasks", g.Len())
	return g, nil
}

func buildTask(ctx context.Context, ct *config.Task, r *registry.Registry, caps registry.Capabilities) (*Task, error) {
	logger := ctxlog.FromContext(ctx).With("taskName", ct.Name)

	t := &Task{
		Name:         ct.Name,
		Description:  ct.Description,
		Group:        ct.Group,
		DependsOn:    append([]string(nil), ct.DependsOn...),
		MustRunAfter: append([]string(nil), ct.MustRunAfter...),
	}

	if ct.SkipIfExists != "" {
		t.SkipPath = ct.SkipIfExists
		t.Skip = caps.Cache.SkipIfExists(ct.SkipIfExists)
		t.Locks = append(t.Locks, ct.SkipIfExists)
	}

	if ct.Action == nil {
		logger.Debug("Task has no action; treating it as an aggregate.")
		return t, nil
	}

	ra, ok := r.Action(ct.Action.Kind)
	if !ok {
		return nil, configErrorf(ErrInvalidAction, "task %q (%s) uses unknown action kind %q; known kinds: %v",
			ct.Name, ct.Source, ct.Action.Kind, r.Kinds())
	}

	input := ra.NewInput()
	if err := ct.Action.Decode(input); err != nil {
		return nil, configErrorf(ErrInvalidAction, "task %q (%s) action %q: %v", ct.Name, ct.Source, ct.Action.Kind, err)
	}

	prepared, err := ra.Build(input, caps)
	if err != nil {
		return nil, configErrorf(ErrInvalidAction, "task %q (%s) action %q: %v", ct.Name, ct.Source, ct.Action.Kind, err)
	}

	t.Action = prepared.Run
	t.Locks = append(t.Locks, prepared.Locks...)
	logger.Debug("Bound action.", "kind", ct.Action.Kind, "locks", t.Locks)
	return t, nil
}
