package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/bindforge/internal/app"
	"github.com/specialistvlad/bindforge/internal/dag"
	"github.com/spf13/cobra"
)

// Exit codes returned by the process.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// options are the persistent flags shared by every subcommand.
type options struct {
	files      []string
	vars       []string
	home       string
	projectDir string
	buildDir   string
	workers    int
	keepGoing  bool
	logLevel   string
	logFormat  string
	s3Region   string
	s3Endpoint string
}

// Run executes the command line in args. Any returned error is an
// *ExitError carrying the process exit code.
func Run(ctx context.Context, args []string, outW, errW io.Writer, getenv func(string) string) error {
	root := NewRootCommand(outW, errW, getenv)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		// Anything cobra rejects before a RunE is reached is a usage error.
		return usageError(err)
	}
	return nil
}

// NewRootCommand builds the bindforge command tree. getenv is consulted
// once, for the default of --home.
func NewRootCommand(outW, errW io.Writer, getenv func(string) string) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "bindforge",
		Short: "Prepare toolchains and sources, then compile contract bindings",
		Long: `bindforge runs a declared graph of build tasks: downloads, archive
extraction and compiler invocations. Tasks whose artifact already exists are
skipped, and independent tasks run in parallel.

Without --file the embedded historical pipeline is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&opts.files, "file", "f", nil, "Pipeline .hcl file or directory (repeatable).")
	flags.StringArrayVar(&opts.vars, "var", nil, "Override a pipeline variable as name=value (repeatable).")
	flags.StringVar(&opts.home, "home", getenv("HOME"), "Home directory exposed as path.home.")
	flags.StringVar(&opts.projectDir, "project-dir", ".", "Project directory exposed as path.project.")
	flags.StringVar(&opts.buildDir, "build-dir", "", "Build directory exposed as path.build (default <project-dir>/build).")
	flags.IntVar(&opts.workers, "workers", 0, "Number of concurrent workers; 0 uses the number of CPUs.")
	flags.BoolVar(&opts.keepGoing, "continue", false, "Keep running independent tasks after a failure.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.s3Region, "s3-region", "", "Region for s3:// downloads.")
	flags.StringVar(&opts.s3Endpoint, "s3-endpoint", "", "Custom endpoint for s3:// downloads.")

	root.AddCommand(
		newRunCommand(opts, outW, errW),
		newPlanCommand(opts, outW, errW),
		newTasksCommand(opts, outW, errW),
	)
	return root
}

// newApp turns the parsed flags into a validated app. Every failure here is
// a usage or configuration error.
func newApp(opts *options, targets []string, outW, errW io.Writer) (*app.App, error) {
	vars, err := parseVars(opts.vars)
	if err != nil {
		return nil, usageError(err)
	}
	cfg, err := app.NewConfig(app.Config{
		PipelinePaths:     opts.files,
		Targets:           targets,
		Vars:              vars,
		HomeDir:           opts.home,
		ProjectDir:        opts.projectDir,
		BuildDir:          opts.buildDir,
		WorkerCount:       opts.workers,
		ContinueOnFailure: opts.keepGoing,
		LogFormat:         strings.ToLower(opts.logFormat),
		LogLevel:          strings.ToLower(opts.logLevel),
		S3Region:          opts.s3Region,
		S3Endpoint:        opts.s3Endpoint,
	})
	if err != nil {
		return nil, usageError(err)
	}
	a, err := app.NewApp(outW, errW, cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return a, nil
}

func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", p)
		}
		vars[name] = value
	}
	return vars, nil
}

// classify maps an error from planning or execution to an exit code.
func classify(err error) *ExitError {
	if errors.Is(err, dag.ErrConfiguration) {
		return usageError(err)
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}
