package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// branchModeEnv sets up a run that needs no build service.
func branchModeEnv(t *testing.T) {
	t.Setenv("INPUT_CWD", t.TempDir())
	t.Setenv("INPUT_OUTPUT", "")
	t.Setenv("INPUT_RULESFILE", "")
	t.Setenv("INPUT_VARIABLE", "")
	t.Setenv("BUILD_SOURCEBRANCH", "refs/heads/feature")
	t.Setenv("INPUT_REFBRANCH", "main")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("GIT_PARALLELISM", "")
}

func TestExecuteWithoutPatternsPublishesNothing(t *testing.T) {
	branchModeEnv(t)
	var out bytes.Buffer

	code := execute([]string{"--output", "json", "--rules", "[Empty]"}, &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "{}\n", out.String())
}

func TestExecuteRejectsBadPattern(t *testing.T) {
	branchModeEnv(t)
	var out bytes.Buffer

	code := execute([]string{"--rules", "[Broken]\nsrc/[a-"}, &out)
	assert.Equal(t, 2, code)
	assert.Contains(t, out.String(), "##vso[task.issue type=error;]PATTERN_INVALID")
	assert.Contains(t, out.String(), "##vso[task.complete result=Failed;]")
	assert.NotContains(t, out.String(), "task.setvariable")
}

func TestExecuteMissingPipelineVariables(t *testing.T) {
	branchModeEnv(t)
	t.Setenv("INPUT_REFBRANCH", "")
	t.Setenv("SYSTEM_TEAMPROJECTID", "")
	var out bytes.Buffer

	code := execute([]string{"--output", "azure"}, &out)
	assert.Equal(t, 2, code)
	assert.Contains(t, out.String(), "System.TeamProjectId")
}

func TestExecuteUnknownFlag(t *testing.T) {
	branchModeEnv(t)
	var out bytes.Buffer

	assert.Equal(t, 1, execute([]string{"--no-such-flag"}, &out))
}
