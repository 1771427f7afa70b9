package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/validation"
)

// Mode selects which settings Validate requires.
type Mode int

const (
	// ModeRun classifies the current pipeline run.
	ModeRun Mode = iota
	// ModeServe runs the HTTP classification service.
	ModeServe
)

var (
	outputFormats = map[string]bool{"azure": true, "json": true, "env": true}
	logFormats    = map[string]bool{"text": true, "json": true, "azure": true}
)

// Validate checks the configuration for the given mode.
func (c *Config) Validate(mode Mode) error {
	v := validation.New()

	if !logFormats[c.Log.Format] {
		return errors.ConfigInvalid(fmt.Sprintf("Invalid log format %q: must be text, json or azure", c.Log.Format))
	}
	if c.Git.Parallelism < 1 {
		return errors.ConfigInvalid("GIT_PARALLELISM must be at least 1")
	}
	if c.Inputs.Variable != "" && !v.IsValidVariableName(c.Inputs.Variable) {
		return errors.ConfigInvalid(fmt.Sprintf("Invalid variable name %q", c.Inputs.Variable))
	}

	if mode == ModeServe {
		if !v.IsValidPort(c.Server.Port) {
			return errors.ConfigInvalid(fmt.Sprintf("Invalid server port %d", c.Server.Port))
		}
		return nil
	}

	if !outputFormats[c.Inputs.Output] {
		return errors.ConfigInvalid(fmt.Sprintf("Invalid output format %q: must be azure, json or env", c.Inputs.Output))
	}
	if info, err := os.Stat(c.Inputs.Cwd); err != nil || !info.IsDir() {
		return errors.ConfigInvalid(fmt.Sprintf("Working directory %q does not exist", c.Inputs.Cwd))
	}

	// Branch mode never talks to the build service.
	if c.branchMode() {
		return nil
	}

	if c.Pipeline.ProjectID == "" {
		return errors.MissingVariable("System.TeamProjectId")
	}
	if c.Pipeline.CollectionURI == "" {
		return errors.MissingVariable("System.TeamFoundationCollectionUri")
	}
	if !v.IsValidCollectionURI(c.Pipeline.CollectionURI) {
		return errors.ConfigInvalid(fmt.Sprintf("Invalid collection URI %q", c.Pipeline.CollectionURI))
	}
	if c.Pipeline.SourceVersion == "" {
		return errors.MissingVariable("Build.SourceVersion")
	}
	if _, err := v.ParseID("System.DefinitionId", c.Pipeline.DefinitionID); err != nil {
		return err
	}
	if _, err := v.ParseID("Build.BuildId", c.Pipeline.BuildID); err != nil {
		return err
	}

	return nil
}

// BaselineInputs returns the run identity used for baseline resolution.
// In branch mode the numeric ids may be absent and are left at zero.
func (c *Config) BaselineInputs() (baseline.Inputs, error) {
	in := baseline.Inputs{
		ProjectID:     c.Pipeline.ProjectID,
		SourceVersion: c.Pipeline.SourceVersion,
		SourceBranch:  c.Pipeline.SourceBranch,
		RefBranch:     c.Inputs.RefBranch,
		BranchFilter:  c.Inputs.BranchFilter,
	}
	if in.BranchMode() {
		return in, nil
	}

	v := validation.New()
	definitionID, appErr := v.ParseID("System.DefinitionId", c.Pipeline.DefinitionID)
	if appErr != nil {
		return baseline.Inputs{}, appErr
	}
	buildID, appErr := v.ParseID("Build.BuildId", c.Pipeline.BuildID)
	if appErr != nil {
		return baseline.Inputs{}, appErr
	}
	in.DefinitionID = definitionID
	in.BuildID = buildID
	return in, nil
}

// RuleText returns the rule text, read from RulesFile when one is set.
// Relative rule files resolve against the working directory input.
func (c *Config) RuleText() (string, error) {
	if c.Inputs.RulesFile == "" {
		return c.Inputs.Rules, nil
	}

	path := c.Inputs.RulesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Inputs.Cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrCodeConfigInvalid, "failed to read rules file %q", c.Inputs.RulesFile)
	}
	return string(data), nil
}

func (c *Config) branchMode() bool {
	return baseline.Inputs{RefBranch: c.Inputs.RefBranch, SourceBranch: c.Pipeline.SourceBranch}.BranchMode()
}
