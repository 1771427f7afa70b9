// Package app ties rule parsing, baseline resolution and classification into
// a single run and reports the outcome to the host.
package app

import (
	"context"

	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/rules"
)

// Resolver picks the baseline of a run.
type Resolver interface {
	Resolve(ctx context.Context, in baseline.Inputs) (baseline.Baseline, error)
}

// Classifier computes category decisions against a baseline.
type Classifier interface {
	Classify(ctx context.Context, rs *rules.RuleSet, b baseline.Baseline) (classifier.Result, error)
}

// Request describes one detection run.
type Request struct {
	Rules    string
	Variable string // default category name
	Baseline baseline.Inputs
}

// Detector runs change detection for a pipeline run.
type Detector struct {
	resolver   Resolver
	classifier Classifier
	log        *logger.Logger
}

// NewDetector creates a detector
func NewDetector(resolver Resolver, classifier Classifier, log *logger.Logger) *Detector {
	return &Detector{resolver: resolver, classifier: classifier, log: log}
}

// Detect parses the rules, validates every pattern, resolves the baseline
// and classifies. Nothing is resolved when no category has patterns.
func (d *Detector) Detect(ctx context.Context, req Request) (classifier.Result, error) {
	variable := req.Variable
	if variable == "" {
		variable = rules.DefaultCategory
	}

	rs := rules.Parse(req.Rules, variable)
	if err := classifier.Validate(rs); err != nil {
		return nil, err
	}

	if len(rs.NonEmpty()) == 0 {
		d.log.Warn("no category has any pattern, nothing to report")
		return classifier.Result{}, nil
	}

	b, err := d.resolver.Resolve(ctx, req.Baseline)
	if err != nil {
		return nil, err
	}
	d.log.Debugf("baseline: %s", b)

	return d.classifier.Classify(ctx, rs, b)
}
