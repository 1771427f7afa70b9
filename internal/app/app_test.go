package app

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	baseline baseline.Baseline
	err      error
	calls    int
}

func (s *stubResolver) Resolve(_ context.Context, _ baseline.Inputs) (baseline.Baseline, error) {
	s.calls++
	return s.baseline, s.err
}

type stubDiffer struct {
	files []string
}

func (s *stubDiffer) Diff(_ context.Context, _, _ string) ([]string, error) {
	return s.files, nil
}

func (s *stubDiffer) DiffTrees(_ context.Context, _, _ string) ([]string, error) {
	return s.files, nil
}

func (s *stubDiffer) LogCommit(_ context.Context, _ string) ([]string, error) {
	return s.files, nil
}

func newDetector(r Resolver, files ...string) *Detector {
	return NewDetector(r, classifier.New(&stubDiffer{files: files}, 1, logger.Nop()), logger.Nop())
}

func TestDetect(t *testing.T) {
	r := &stubResolver{baseline: baseline.Resolved{Revision: "base", Head: baseline.Head, Strategy: baseline.RangeDiff}}

	got, err := newDetector(r, "src/a.ts", "README.md").Detect(context.Background(), Request{
		Rules: "src/**\n[Docs]\ndocs/**",
	})
	require.NoError(t, err)
	assert.Equal(t, classifier.Result{
		{Category: rules.DefaultCategory, Changed: true},
		{Category: "Docs", Changed: false},
	}, got)
}

func TestDetectValidatesBeforeResolving(t *testing.T) {
	r := &stubResolver{}

	_, err := newDetector(r).Detect(context.Background(), Request{Rules: "src/[a-", Variable: "Code"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePatternInvalid, errors.As(err).Code)
	assert.Zero(t, r.calls)
}

func TestDetectWithoutPatternsSkipsResolution(t *testing.T) {
	r := &stubResolver{}

	got, err := newDetector(r).Detect(context.Background(), Request{Rules: "[Empty]", Variable: "X"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, r.calls)
}

func TestDetectResolverFailure(t *testing.T) {
	queryErr := errors.BuildQueryFailed(stderrors.New("503"), "latest successful build")
	r := &stubResolver{err: queryErr}

	got, err := newDetector(r).Detect(context.Background(), Request{Rules: "**"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, queryErr)
}

func result() classifier.Result {
	return classifier.Result{{Category: "Code", Changed: true}, {Category: "Docs", Changed: false}}
}

func TestPublishAzure(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReporter(&out, FormatAzure, true, false, logger.Nop()).Publish(result()))
	assert.Equal(t,
		"##vso[task.setvariable variable=Code;isOutput=true;]true\n"+
			"##vso[task.setvariable variable=Docs;isOutput=true;]false\n",
		out.String())
}

func TestPublishAzureVerbose(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReporter(&out, "", false, true, logger.Nop()).Publish(classifier.Result{{Category: "Docs", Changed: false}}))
	assert.Equal(t,
		">> DOCS: No change detected since last succeeded build, setting \"Docs\" to \"false\"\n"+
			"##vso[task.setvariable variable=Docs;]false\n",
		out.String())
}

func TestPublishJSONKeepsDeclarationOrder(t *testing.T) {
	var out bytes.Buffer
	rs := classifier.Result{{Category: "Zeta", Changed: true}, {Category: "Alpha", Changed: false}}
	require.NoError(t, NewReporter(&out, FormatJSON, false, false, logger.Nop()).Publish(rs))
	assert.Equal(t, "{\"Zeta\":true,\"Alpha\":false}\n", out.String())
}

func TestPublishEnv(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReporter(&out, FormatEnv, false, false, logger.Nop()).Publish(result()))
	assert.Equal(t, "Code=true\nDocs=false\n", out.String())
}

func TestPublishUnknownFormatWritesNothing(t *testing.T) {
	var out bytes.Buffer
	err := NewReporter(&out, "xml", false, false, logger.Nop()).Publish(result())
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestFail(t *testing.T) {
	var out bytes.Buffer
	NewReporter(&out, FormatAzure, false, false, logger.Nop()).Fail(errors.MissingVariable("Build.BuildId"))
	assert.Contains(t, out.String(), "##vso[task.issue type=error;]CONFIG_INVALID")
	assert.Contains(t, out.String(), "##vso[task.complete result=Failed;]Environment Error")

	out.Reset()
	NewReporter(&out, FormatJSON, false, false, logger.Nop()).Fail(context.Canceled)
	assert.Empty(t, out.String())
}
