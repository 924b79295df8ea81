package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/specialistvlad/bindforge/internal/archive"
	"github.com/specialistvlad/bindforge/internal/artifact"
	"github.com/specialistvlad/bindforge/internal/config"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/specialistvlad/bindforge/internal/dag"
	"github.com/specialistvlad/bindforge/internal/fetch"
	"github.com/specialistvlad/bindforge/internal/hcl_adapter"
	"github.com/specialistvlad/bindforge/internal/invoke"
	"github.com/specialistvlad/bindforge/internal/registry"
	"github.com/specialistvlad/bindforge/pipelines"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model
	graph    *dag.Graph
	locks    *artifact.PathLocks
}

// NewApp is the constructor for the main application. Logs go to logW and
// reports to outW. The pipeline is loaded and bound to the registered action
// kinds; any error here is a configuration error and matches
// dag.ErrConfiguration.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", reg.Kinds())

	if err := reg.ValidateRegistry(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	model, err := loadPipeline(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load pipeline: %w", dag.ErrConfiguration, err)
	}
	logger.Debug("Pipeline loaded and translated into unified model.", "tasks", len(model.Tasks))

	fs := osfs.New("/")
	graph, err := dag.Build(ctx, model, reg, capabilities(cfg, fs, logW))
	if err != nil {
		return nil, fmt.Errorf("failed to build task graph: %w", err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		model:    model,
		graph:    graph,
		locks:    artifact.NewPathLocks(),
	}, nil
}

func loadPipeline(ctx context.Context, cfg *Config) (*config.Model, error) {
	loader := hcl_adapter.NewLoader(hcl_adapter.Paths{
		Home:    cfg.HomeDir,
		Project: cfg.ProjectDir,
		Build:   cfg.BuildDir,
	}, cfg.Vars)

	if len(cfg.PipelinePaths) == 0 {
		ctxlog.FromContext(ctx).Debug("No pipeline files given; using the embedded pipeline.", "name", pipelines.HistoricalName)
		return loader.LoadSource(ctx, pipelines.HistoricalName, pipelines.Historical)
	}
	return loader.Load(ctx, cfg.PipelinePaths...)
}

// capabilities wires the production services. Process output is streamed to
// the log writer so compiler diagnostics stay visible.
func capabilities(cfg *Config, fs billy.Filesystem, logW io.Writer) registry.Capabilities {
	s3Opts := fetch.S3Options{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint}
	return registry.Capabilities{
		Downloader: fetch.New(
			fetch.WithFilesystem(fs),
			fetch.WithS3Factory(func(ctx context.Context) (fetch.ObjectGetter, error) {
				return fetch.NewS3Client(ctx, s3Opts)
			}),
		),
		Extractor: archive.New(fs),
		Invoker:   invoke.NewProcessRunner(invoke.WithStdout(logW), invoke.WithStderr(logW)),
		Cache:     artifact.NewCache(fs),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Graph returns the validated task graph.
func (a *App) Graph() *dag.Graph {
	return a.graph
}

func (a *App) targets() []string {
	if len(a.config.Targets) > 0 {
		return a.config.Targets
	}
	return a.model.DefaultTargets
}
