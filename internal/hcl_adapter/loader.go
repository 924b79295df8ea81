package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/bindforge/internal/config"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Paths are the well-known directories exposed to expressions as `path.*`.
type Paths struct {
	Home    string
	Project string
	Build   string
}

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	paths     Paths
	overrides map[string]string
}

// NewLoader creates a new HCL pipeline loader. Overrides replace variable
// defaults by name.
func NewLoader(paths Paths, overrides map[string]string) *Loader {
	return &Loader{paths: paths, overrides: overrides}
}

// source is one parsed pipeline file.
type source struct {
	filename string
	file     *hcl.File
	root     fileRoot
	// ranges maps task names to their block header location.
	ranges map[string]hcl.Range
}

// Load orchestrates the entire HCL loading process. Directories are searched
// recursively for .hcl files; paths that do not exist are ignored.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl pipeline files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files), "files", files)

	parser := hclparse.NewParser()
	sources := make([]*source, 0, len(files))
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		src, err := decodeSource(file, f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return l.translate(ctx, sources)
}

// LoadSource loads a single pipeline held in memory, such as an embedded
// default. The filename is used in diagnostics and for `path.pipeline`.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	s, err := decodeSource(filename, f)
	if err != nil {
		return nil, err
	}
	return l.translate(ctx, []*source{s})
}

func decodeSource(filename string, f *hcl.File) (*source, error) {
	s := &source{filename: filename, file: f, ranges: make(map[string]hcl.Range)}
	if diags := gohcl.DecodeBody(f.Body, nil, &s.root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if body, ok := f.Body.(*hclsyntax.Body); ok {
		for _, b := range body.Blocks {
			if b.Type == "task" && len(b.Labels) == 1 {
				s.ranges[b.Labels[0]] = b.DefRange()
			}
		}
	}
	return s, nil
}

// translate resolves variables across all sources, then evaluates every
// task against the complete context. Tasks keep file then block order.
func (l *Loader) translate(ctx context.Context, sources []*source) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := &config.Model{Variables: make(map[string]*config.Variable)}

	for _, s := range sources {
		if s.root.DefaultTargets != nil {
			if model.DefaultTargets != nil {
				return nil, fmt.Errorf("%s: default_targets is already set by another pipeline file", s.filename)
			}
			model.DefaultTargets = append([]string{}, *s.root.DefaultTargets...)
		}
		for _, v := range s.root.Variables {
			if _, exists := model.Variables[v.Name]; exists {
				return nil, fmt.Errorf("%s: variable %q is declared more than once", s.filename, v.Name)
			}
			val, err := l.variableValue(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.filename, err)
			}
			model.Variables[v.Name] = &config.Variable{Name: v.Name, Description: v.Description, Value: val}
		}
	}

	for name := range l.overrides {
		if _, ok := model.Variables[name]; !ok {
			return nil, fmt.Errorf("variable %q is set on the command line but not declared in any pipeline file", name)
		}
	}

	for _, s := range sources {
		evalCtx := l.evalContext(model.Variables, filepath.Dir(s.filename))
		for _, t := range s.root.Tasks {
			task, err := l.translateTask(ctx, s, t, evalCtx)
			if err != nil {
				return nil, err
			}
			model.Tasks = append(model.Tasks, task)
		}
	}

	logger.Debug("HCL loading complete.", "variables", len(model.Variables), "tasks", len(model.Tasks), "default_targets", model.DefaultTargets)
	return model, nil
}

func (l *Loader) variableValue(v *Variable) (cty.Value, error) {
	if override, ok := l.overrides[v.Name]; ok {
		return cty.StringVal(override), nil
	}
	if !isExprDefined(v.Default) {
		return cty.NilVal, fmt.Errorf("variable %q has no default and was not set with --var", v.Name)
	}
	val, diags := v.Default.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid default for variable %q: %w", v.Name, diags)
	}
	return val, nil
}

func (l *Loader) evalContext(vars map[string]*config.Variable, pipelineDir string) *hcl.EvalContext {
	values := make(map[string]cty.Value, len(vars))
	for name, v := range vars {
		values[name] = v.Value
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(values),
			"path": cty.ObjectVal(map[string]cty.Value{
				"home":     cty.StringVal(l.paths.Home),
				"project":  cty.StringVal(l.paths.Project),
				"build":    cty.StringVal(l.paths.Build),
				"pipeline": cty.StringVal(pipelineDir),
			}),
		},
		Functions: functions(),
	}
}

func (l *Loader) translateTask(ctx context.Context, s *source, t *Task, evalCtx *hcl.EvalContext) (*config.Task, error) {
	logger := ctxlog.FromContext(ctx)

	where := s.filename
	if r, ok := s.ranges[t.Name]; ok {
		where = fmt.Sprintf("%s:%d", r.Filename, r.Start.Line)
	}

	out := &config.Task{
		Name:         t.Name,
		DependsOn:    t.DependsOn,
		MustRunAfter: t.MustRunAfter,
		Source:       where,
	}

	var err error
	if out.Description, err = evalString(t.Description, evalCtx, "description"); err != nil {
		return nil, fmt.Errorf("task %q: %w", t.Name, err)
	}
	if out.Group, err = evalString(t.Group, evalCtx, "group"); err != nil {
		return nil, fmt.Errorf("task %q: %w", t.Name, err)
	}
	if out.SkipIfExists, err = evalString(t.SkipIfExists, evalCtx, "skip_if_exists"); err != nil {
		return nil, fmt.Errorf("task %q: %w", t.Name, err)
	}

	switch len(t.Actions) {
	case 0:
	case 1:
		a := t.Actions[0]
		body := a.Body
		out.Action = &config.Action{
			Kind: a.Kind,
			Decode: func(target any) error {
				if diags := gohcl.DecodeBody(body, evalCtx, target); diags.HasErrors() {
					return diags
				}
				return nil
			},
		}
	default:
		return nil, fmt.Errorf("%s: task %q declares %d action blocks; at most one is allowed", where, t.Name, len(t.Actions))
	}

	logger.Debug("Translated task.", "taskName", out.Name, "source", where, "depends_on", out.DependsOn, "must_run_after", out.MustRunAfter)
	return out, nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated
// list of all .hcl files found. Files within a directory are sorted.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return allFiles, nil
}
