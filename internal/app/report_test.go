package app

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/bindforge/internal/executor"
	"github.com/specialistvlad/bindforge/internal/invoke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	pe := &invoke.ProcessError{
		Kind:       invoke.ErrExit,
		Command:    []string{"bash", "compile_solidity.sh"},
		ExitCode:   2,
		StderrTail: "line one\nline two\n",
	}
	rep := &executor.Report{
		Duration: 1500 * time.Millisecond,
		Results: []executor.TaskResult{
			{Name: "downloadWeb3j", State: executor.Skipped},
			{Name: "extractContracts", State: executor.Succeeded, Duration: 20 * time.Millisecond},
			{Name: "compile", State: executor.Failed, Err: pe, Duration: time.Second},
			{Name: "process", State: executor.Blocked, Cause: "compile"},
			{Name: "publish", State: executor.Canceled, Err: errors.New("stopped after a failure")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep))
	out := buf.String()

	assert.Regexp(t, `downloadWeb3j\s+SKIPPED\s+-`, out)
	assert.Regexp(t, `extractContracts\s+SUCCEEDED\s+20ms`, out)
	assert.Contains(t, out, "FAILED compile: ")
	assert.Contains(t, out, "exit code 2")
	assert.Contains(t, out, "    line one\n    line two\n")
	assert.Contains(t, out, "  process (BLOCKED by compile)\n")
	assert.Contains(t, out, "  publish (CANCELED: stopped after a failure)\n")
	assert.Contains(t, out, "1 succeeded, 1 skipped, 1 failed, 2 not attempted in 1.5s")
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "build", orDash("build"))
}
