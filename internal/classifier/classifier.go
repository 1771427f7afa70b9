// Package classifier decides, per rule category, whether any changed path
// falls under the category's patterns.
package classifier

import (
	"context"
	"fmt"

	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/git"
	"github.com/nahidhasan98/changed-files/internal/glob"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/rules"
)

// Outcome is the decision for one category.
type Outcome struct {
	Category string
	Changed  bool
}

// Result lists outcomes in category declaration order. Categories without
// patterns never appear.
type Result []Outcome

// Map returns the result as a category -> changed map.
func (r Result) Map() map[string]bool {
	m := make(map[string]bool, len(r))
	for _, o := range r {
		m[o.Category] = o.Changed
	}
	return m
}

// Differ computes change sets.
type Differ interface {
	git.CommitLogger
	Diff(ctx context.Context, from, to string) ([]string, error)
	DiffTrees(ctx context.Context, from, to string) ([]string, error)
}

// Classifier turns a baseline into per-category decisions.
type Classifier struct {
	differ      Differ
	parallelism int
	log         *logger.Logger
}

// New creates a classifier. parallelism bounds concurrent per-commit diffs.
func New(differ Differ, parallelism int, log *logger.Logger) *Classifier {
	return &Classifier{differ: differ, parallelism: parallelism, log: log}
}

// Validate checks every pattern of every category.
func Validate(rs *rules.RuleSet) error {
	for _, c := range rs.NonEmpty() {
		for _, p := range c.Patterns {
			if err := glob.Check(p); err != nil {
				return errors.PatternInvalid(c.Name, p, err)
			}
		}
	}
	return nil
}

// Classify computes the result of rs against b.
func (c *Classifier) Classify(ctx context.Context, rs *rules.RuleSet, b baseline.Baseline) (Result, error) {
	switch b := b.(type) {
	case baseline.Unresolved:
		c.log.Debugf("baseline unresolved (%s): marking all categories as changed", b.Reason)
		return constant(rs, true), nil
	case baseline.Identical:
		c.log.Debugf("baseline identical to %s: marking all categories as unchanged", b.Revision)
		return constant(rs, false), nil
	case baseline.Resolved:
		files, err := c.ChangeSet(ctx, b)
		if err != nil {
			return nil, err
		}
		c.log.Debugf("changed files are: %v", files)
		return c.Match(rs, files)
	default:
		return nil, fmt.Errorf("unsupported baseline %T", b)
	}
}

// ChangeSet lists the paths changed since a resolved baseline.
func (c *Classifier) ChangeSet(ctx context.Context, b baseline.Resolved) ([]string, error) {
	switch b.Strategy {
	case baseline.CommitList:
		return git.FilesFromCommits(ctx, c.differ, b.Commits, c.parallelism)
	case baseline.RangeDiff:
		return c.differ.Diff(ctx, b.Revision, b.Head)
	case baseline.TreeDiff:
		return c.differ.DiffTrees(ctx, b.Revision, b.Head)
	default:
		return nil, fmt.Errorf("unsupported diff strategy %s", b.Strategy)
	}
}

// Match classifies an explicit change set. Every category is matched against
// the full set independently.
func (c *Classifier) Match(rs *rules.RuleSet, files []string) (Result, error) {
	c.log.Debug("> Filtering files using glob rules")

	cats := rs.NonEmpty()
	result := make(Result, 0, len(cats))
	for _, cat := range cats {
		changed, err := glob.MatchesAny(files, cat.Patterns)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodePatternInvalid, "invalid glob pattern in category %q", cat.Name)
		}
		log := c.log.With("category", cat.Name)
		log.Debugf("changed=%t", changed)
		if changed && c.log.DebugEnabled() {
			matched, _ := glob.Filter(files, cat.Patterns)
			log.Debugf("matching files: %v", matched)
		}
		result = append(result, Outcome{Category: cat.Name, Changed: changed})
	}
	return result, nil
}

func constant(rs *rules.RuleSet, changed bool) Result {
	cats := rs.NonEmpty()
	result := make(Result, 0, len(cats))
	for _, cat := range cats {
		result = append(result, Outcome{Category: cat.Name, Changed: changed})
	}
	return result
}
