// Package baseline decides which revision the current run is compared with.
package baseline

import (
	"fmt"
	"strings"
)

// Baseline is one of Resolved, Identical or Unresolved. Consumers must handle
// all three.
type Baseline interface {
	fmt.Stringer
	isBaseline()
}

// Strategy selects how the change set of a Resolved baseline is computed.
type Strategy int

const (
	// RangeDiff diffs Head against its merge base with Revision
	// (Revision...Head).
	RangeDiff Strategy = iota
	// CommitList concatenates the per-commit diffs of Commits.
	CommitList
	// TreeDiff compares the trees of Revision and Head directly, so it also
	// covers a Revision that is no longer an ancestor of Head.
	TreeDiff
)

func (s Strategy) String() string {
	switch s {
	case RangeDiff:
		return "range-diff"
	case CommitList:
		return "commit-list"
	case TreeDiff:
		return "tree-diff"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Resolved is a usable comparison point.
type Resolved struct {
	Revision string
	Head     string
	Strategy Strategy
	Commits  []string
}

// Identical means the baseline build ran on the current revision.
type Identical struct {
	Revision string
}

// Unresolved means no comparison point could be established; every category
// is treated as changed.
type Unresolved struct {
	Reason string
}

func (Resolved) isBaseline()   {}
func (Identical) isBaseline()  {}
func (Unresolved) isBaseline() {}

func (b Resolved) String() string {
	switch b.Strategy {
	case CommitList:
		return fmt.Sprintf("resolved(%s, %d commits)", b.Revision, len(b.Commits))
	case TreeDiff:
		return fmt.Sprintf("resolved(%s %s)", b.Revision, b.Head)
	default:
		return fmt.Sprintf("resolved(%s...%s)", b.Revision, b.Head)
	}
}

func (b Identical) String() string {
	return fmt.Sprintf("identical(%s)", b.Revision)
}

func (b Unresolved) String() string {
	return fmt.Sprintf("unresolved(%s)", b.Reason)
}

// NormalizeBranch strips the refs/heads/ and origin/ prefixes so that
// "refs/heads/main", "origin/main" and "main" compare equal.
func NormalizeBranch(branch string) string {
	branch = strings.TrimSpace(branch)
	branch = strings.TrimPrefix(branch, "refs/heads/")
	branch = strings.TrimPrefix(branch, "origin/")
	return branch
}
