package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
)

// TailSize is the number of trailing bytes kept from each output stream.
const TailSize = 4 << 10

// Command describes a single program invocation.
type Command struct {
	Program string
	Args    []string
	Dir     string
	// Env is appended to the current process environment.
	Env map[string]string
	// MakeExecutable names a file that receives the executable bits before
	// the program starts. Relative paths are resolved against Dir.
	MakeExecutable string
}

// Line returns the program followed by its arguments.
func (c Command) Line() []string {
	return append([]string{c.Program}, c.Args...)
}

// Result holds the outcome of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Invoker runs external programs.
type Invoker interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ProcessRunner is the os/exec backed Invoker.
type ProcessRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// Option configures a ProcessRunner.
type Option func(*ProcessRunner)

// WithStdout sets a writer that receives the process stdout as it is produced.
func WithStdout(w io.Writer) Option {
	return func(r *ProcessRunner) { r.stdout = w }
}

// WithStderr sets a writer that receives the process stderr as it is produced.
func WithStderr(w io.Writer) Option {
	return func(r *ProcessRunner) { r.stderr = w }
}

// NewProcessRunner creates a ProcessRunner.
func NewProcessRunner(opts ...Option) *ProcessRunner {
	r := &ProcessRunner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the command and waits for it to finish. A non-zero exit code
// is reported as a *ProcessError of kind ErrExit together with the Result.
func (r *ProcessRunner) Run(ctx context.Context, c Command) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if c.MakeExecutable != "" {
		if err := makeExecutable(resolve(c.Dir, c.MakeExecutable)); err != nil {
			return nil, r.fail(c, ErrNotFound, -1, "", err)
		}
	}

	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(c.Env)...)
	}

	stdout := newTailBuffer(TailSize)
	stderr := newTailBuffer(TailSize)
	cmd.Stdout = tee(stdout, r.stdout)
	cmd.Stderr = tee(stderr, r.stderr)

	logger.Debug("Starting process.", "command", strings.Join(c.Line(), " "), "dir", c.Dir)
	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		logger.Debug("Process finished.", "command", c.Program)
		return res, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, r.fail(c, ErrExit, res.ExitCode, res.Stderr, err)
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return nil, r.fail(c, ErrNotFound, -1, "", err)
	default:
		return nil, r.fail(c, ErrSpawn, -1, "", err)
	}
}

func (r *ProcessRunner) fail(c Command, kind error, code int, tail string, err error) *ProcessError {
	return &ProcessError{
		Kind:       kind,
		Command:    c.Line(),
		Dir:        c.Dir,
		ExitCode:   code,
		StderrTail: tail,
		Err:        err,
	}
}

func makeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("make executable: %w", err)
	}
	if err := os.Chmod(path, info.Mode()|0o111); err != nil {
		return fmt.Errorf("make executable: %w", err)
	}
	return nil
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func tee(capture io.Writer, extra io.Writer) io.Writer {
	if extra == nil {
		return capture
	}
	return io.MultiWriter(capture, extra)
}

// envList renders env sorted by key so the command environment is stable.
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
