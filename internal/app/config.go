package app

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// PipelinePaths are .hcl files or directories. Empty means the embedded
	// historical pipeline.
	PipelinePaths []string
	// Targets to plan; empty means the pipeline's default_targets.
	Targets []string
	Vars    map[string]string

	HomeDir    string
	ProjectDir string
	// BuildDir defaults to <ProjectDir>/build.
	BuildDir string

	WorkerCount       int
	ContinueOnFailure bool

	LogFormat string
	LogLevel  string

	S3Region   string
	S3Endpoint string
}

// NewConfig validates cfg and resolves its directories to absolute paths.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.HomeDir == "" {
		return nil, errors.New("home directory is required; set HOME or pass --home")
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.WorkerCount)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}
	var err error
	if cfg.HomeDir, err = filepath.Abs(cfg.HomeDir); err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	if cfg.ProjectDir, err = filepath.Abs(cfg.ProjectDir); err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = filepath.Join(cfg.ProjectDir, "build")
	} else if cfg.BuildDir, err = filepath.Abs(cfg.BuildDir); err != nil {
		return nil, fmt.Errorf("resolve build directory: %w", err)
	}

	return &cfg, nil
}
