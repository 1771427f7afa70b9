package git

import (
	"context"

	"github.com/nahidhasan98/changed-files/internal/errors"
	"golang.org/x/sync/errgroup"
)

// CommitLogger lists the paths touched by one commit.
type CommitLogger interface {
	LogCommit(ctx context.Context, commit string) ([]string, error)
}

// FilesFromCommits concatenates the changed paths of every commit in commit
// order, keeping duplicates. Up to parallelism commits are logged at once; the
// first failure cancels the others and no partial list is returned.
func FilesFromCommits(ctx context.Context, logger CommitLogger, commits []string, parallelism int) ([]string, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	slots := make([][]string, len(commits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, commit := range commits {
		g.Go(func() error {
			files, err := logger.LogCommit(gctx, commit)
			if err != nil {
				return err
			}
			slots[i] = files
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err)
	}

	files := make([]string, 0)
	for _, s := range slots {
		files = append(files, s...)
	}
	return files, nil
}
