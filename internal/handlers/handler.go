package handlers

import (
	"context"

	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/rules"
	"github.com/nahidhasan98/changed-files/internal/validation"
)

// Classifier computes category decisions
type Classifier interface {
	Classify(ctx context.Context, rs *rules.RuleSet, b baseline.Baseline) (classifier.Result, error)
	Match(rs *rules.RuleSet, files []string) (classifier.Result, error)
}

// Options holds request defaults and webhook secrets
type Options struct {
	DefaultRules        string
	DefaultVariable     string
	GitHubWebhookSecret string
	GiteaWebhookSecret  string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	classifier Classifier
	opts       Options
	rules      *ruleCache
	log        *logger.Logger
	validator  *validation.Validator
}

// New creates a new handler instance
func New(c Classifier, opts Options, log *logger.Logger) *Handler {
	if opts.DefaultRules == "" {
		opts.DefaultRules = rules.DefaultRules
	}
	if opts.DefaultVariable == "" {
		opts.DefaultVariable = rules.DefaultCategory
	}
	return &Handler{
		classifier: c,
		opts:       opts,
		rules:      newRuleCache(ruleCacheSize),
		log:        log,
		validator:  validation.New(),
	}
}
