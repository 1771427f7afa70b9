package baseline

import (
	"context"

	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/models"
)

// Head is the revision compared against the baseline.
const Head = "HEAD"

// BuildHistory looks up previous builds of the pipeline.
type BuildHistory interface {
	// LatestSuccessfulBuild returns nil when no successful build exists.
	LatestSuccessfulBuild(ctx context.Context, project string, definitionID int, branch string) (*models.Build, error)
	BuildCommits(ctx context.Context, project string, buildID int) ([]string, error)
}

// ObjectStore checks whether a revision exists in the local checkout.
type ObjectStore interface {
	IsReachable(ctx context.Context, rev string) (bool, error)
}

// Inputs identify the current run. They are built once at the process
// boundary; the resolver reads nothing from the environment.
type Inputs struct {
	ProjectID     string
	DefinitionID  int
	BuildID       int
	SourceVersion string
	SourceBranch  string
	RefBranch     string
	BranchFilter  string
}

// BranchMode reports whether the run compares against a reference branch.
func (in Inputs) BranchMode() bool {
	ref := NormalizeBranch(in.RefBranch)
	return ref != "" && ref != NormalizeBranch(in.SourceBranch)
}

// Resolver picks the baseline of a run.
type Resolver struct {
	builds  BuildHistory
	objects ObjectStore
	log     *logger.Logger
}

// NewResolver creates a resolver
func NewResolver(builds BuildHistory, objects ObjectStore, log *logger.Logger) *Resolver {
	return &Resolver{builds: builds, objects: objects, log: log}
}

// Resolve returns the baseline for in. Missing or unreachable previous builds
// degrade to Unresolved; only query and tool failures are errors.
func (r *Resolver) Resolve(ctx context.Context, in Inputs) (Baseline, error) {
	if in.BranchMode() {
		ref := "origin/" + NormalizeBranch(in.RefBranch)
		r.log.Infof("compare %s with the ref branch %s", in.SourceBranch, ref)
		return Resolved{Revision: ref, Head: Head, Strategy: RangeDiff}, nil
	}

	build, err := r.builds.LatestSuccessfulBuild(ctx, in.ProjectID, in.DefinitionID, in.BranchFilter)
	if err != nil {
		return nil, err
	}
	if build == nil {
		r.log.Info("no previous successful build found, assuming everything changed")
		return Unresolved{Reason: "no previous successful build"}, nil
	}

	log := r.log.With("baseline_build", build.ID)
	if build.SourceVersion == in.SourceVersion {
		log.Infof("previous successful build %s ran on the same revision %s", build.BuildNumber, in.SourceVersion)
		return Identical{Revision: build.SourceVersion}, nil
	}

	ok, err := r.objects.IsReachable(ctx, build.SourceVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warnf("revision %s of build %s is not in the local repository, assuming everything changed", build.SourceVersion, build.BuildNumber)
		return Unresolved{Reason: "baseline revision " + build.SourceVersion + " not found locally"}, nil
	}

	commits, err := r.builds.BuildCommits(ctx, in.ProjectID, in.BuildID)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		log.Infof("build %d reports no commits, diffing %s against %s", in.BuildID, build.SourceVersion, Head)
		return Resolved{Revision: build.SourceVersion, Head: Head, Strategy: TreeDiff}, nil
	}

	log.Infof("extracting changes from %d commits of build %d", len(commits), in.BuildID)
	return Resolved{Revision: build.SourceVersion, Head: Head, Strategy: CommitList, Commits: commits}, nil
}
