package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/bindforge/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfigErrorExitsWithUsageCode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A pipeline with a syntax error fails while the app is being built.
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(`task "a" {`), 0o600)
	require.NoError(t, err, "failed to set up test file")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	getenv := func(string) string { return tempDir }

	// --- Act ---
	runErr := run(context.Background(), out, errOut, []string{"run", "-f", filePath}, getenv)

	// --- Assert ---
	require.Error(t, runErr)
	var exitErr *cli.ExitError
	require.True(t, errors.As(runErr, &exitErr))
	require.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, exitErr.Message, "failed to parse")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(context.Background(), out, errOut, []string{"-h"}, func(string) string { return "" })

	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_TasksOnEmbeddedPipeline(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(context.Background(), out, errOut, []string{"tasks", "--project-dir", home}, func(string) string { return home })

	require.NoError(t, err)
	require.Contains(t, out.String(), "compileHistoricalSolidityContracts")
}
