package git

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	answers map[string]answer
}

type answer struct {
	stdout string
	err    error
}

func (f *fakeRunner) run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	a, ok := f.answers[strings.Join(args, " ")]
	if !ok {
		return nil, &ExitError{Code: 129, Stderr: "unexpected command"}
	}
	return []byte(a.stdout), a.err
}

func newFakeClient(answers map[string]answer) (*Client, *fakeRunner) {
	f := &fakeRunner{answers: answers}
	return New("/bin/git", "/work", logger.Nop(), WithCommand(f.run)), f
}

func TestDiff(t *testing.T) {
	c, f := newFakeClient(map[string]answer{
		"-c core.quotepath=off diff --name-only origin/release...HEAD -- .": {
			stdout: "[command]/bin/git diff --name-only origin/release...HEAD\nsrc/file1.ts\n\"docs/with \\\"quote\\\".md\"\n\n  docs/index.md  \nrc:0\n",
		},
	})

	files, err := c.Diff(context.Background(), "origin/release", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/file1.ts", `docs/with "quote".md`, "docs/index.md"}, files)

	require.Len(t, f.calls, 1)
	assert.Equal(t, "/work", f.calls[0].dir)
	assert.Equal(t, "/bin/git", f.calls[0].name)
}

func TestDiffTrees(t *testing.T) {
	c, _ := newFakeClient(map[string]answer{
		"-c core.quotepath=off diff --name-only latest_commit_id HEAD -- .": {stdout: "src/file1.ts\ndocs/index.md\n"},
	})

	files, err := c.DiffTrees(context.Background(), "latest_commit_id", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/file1.ts", "docs/index.md"}, files)
}

func TestLogCommit(t *testing.T) {
	c, _ := newFakeClient(map[string]answer{
		"-c core.quotepath=off log -m --first-parent -1 --name-only --pretty=format: latest_commit_id": {
			stdout: "\nsrc/file1.ts\nsrc/file2.ts\ndocs/index.md",
		},
	})

	files, err := c.LogCommit(context.Background(), "latest_commit_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/file1.ts", "src/file2.ts", "docs/index.md"}, files)
}

func TestToolFailureIsFatal(t *testing.T) {
	c, _ := newFakeClient(map[string]answer{
		"-c core.quotepath=off log -m --first-parent -1 --name-only --pretty=format: abc": {
			err: &ExitError{Code: 128, Stderr: "fatal: bad object abc"},
		},
	})

	_, err := c.LogCommit(context.Background(), "abc")
	require.Error(t, err)

	appErr := errors.As(err)
	assert.Equal(t, errors.ErrCodeToolFailed, appErr.Code)
	assert.Contains(t, err.Error(), "fatal: bad object abc")
}

func TestIsReachable(t *testing.T) {
	c, _ := newFakeClient(map[string]answer{
		"-c core.quotepath=off cat-file -e present^{commit}": {},
		"-c core.quotepath=off cat-file -e pruned^{commit}":  {err: &ExitError{Code: 128, Stderr: "fatal: Not a valid object name pruned^{commit}"}},
		"-c core.quotepath=off cat-file -e broken^{commit}":  {err: exec.ErrNotFound},
	})
	ctx := context.Background()

	ok, err := c.IsReachable(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsReachable(ctx, "pruned")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.IsReachable(ctx, "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Equal(t, errors.ErrCodeToolFailed, errors.As(err).Code)
}

func TestCancelledContextAborts(t *testing.T) {
	c, _ := newFakeClient(map[string]answer{
		"-c core.quotepath=off diff --name-only a...b -- .": {stdout: "x"},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Diff(ctx, "a", "b")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCancelled, errors.As(err).Code)
	assert.True(t, stderrors.Is(err, context.Canceled))
}

func TestParseNameOnly(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank lines", "\n\n  \n", []string{}},
		{"trims whitespace", "  a.ts \r\n b.md\t", []string{"a.ts", "b.md"}},
		{"keeps duplicates", "a\na\n", []string{"a", "a"}},
		{"unquotes octal escapes", `"docs/r\303\251sum\303\251.md"`, []string{"docs/résumé.md"}},
		{"strips stray quotes", `"half`, []string{"half"}},
		{"drops agent noise", "##[debug]x\n##vso[task.debug]y\nrc:0\nsuccess:true\n> Executing: git log\nreal.txt", []string{"real.txt"}},
		{"keeps look-alikes", "rc/0.txt\nsuccess.md", []string{"rc/0.txt", "success.md"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseNameOnly(tc.in))
		})
	}
}

func TestAgainstRealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	gitIn := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"HOME="+dir,
			"GIT_CONFIG_NOSYSTEM=1",
			"GIT_AUTHOR_NAME=ci", "GIT_AUTHOR_EMAIL=ci@example.com",
			"GIT_COMMITTER_NAME=ci", "GIT_COMMITTER_EMAIL=ci@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return strings.TrimSpace(string(out))
	}
	write := func(name, content string) {
		t.Helper()
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	gitIn("init", "-q")
	write("a.ts", "1")
	gitIn("add", ".")
	gitIn("commit", "-q", "--no-gpg-sign", "-m", "one")
	first := gitIn("rev-parse", "HEAD")

	write("a.ts", "2")
	write("docs/résumé.md", "cv")
	write(".github/workflows/ci.yml", "on: push")
	gitIn("add", ".")
	gitIn("commit", "-q", "--no-gpg-sign", "-m", "two")
	second := gitIn("rev-parse", "HEAD")

	c := New("git", dir, logger.Nop())
	ctx := context.Background()

	files, err := c.Diff(ctx, first, "HEAD")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".github/workflows/ci.yml", "a.ts", "docs/résumé.md"}, files)

	files, err = c.LogCommit(ctx, second)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".github/workflows/ci.yml", "a.ts", "docs/résumé.md"}, files)

	files, err = FilesFromCommits(ctx, c, []string{first, second}, 2)
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, "a.ts", files[0])

	ok, err := c.IsReachable(ctx, first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsReachable(ctx, strings.Repeat("0", 39)+"1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.LogCommit(ctx, "no-such-ref")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeToolFailed, errors.As(err).Code)

	// A rewritten history leaves the second commit off HEAD's ancestry.
	gitIn("checkout", "-q", "-b", "rewritten", first)
	write("side.txt", "x")
	gitIn("add", ".")
	gitIn("commit", "-q", "--no-gpg-sign", "-m", "side")

	files, err = c.Diff(ctx, second, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"side.txt"}, files)

	files, err = c.DiffTrees(ctx, second, "HEAD")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".github/workflows/ci.yml", "a.ts", "docs/résumé.md", "side.txt"}, files)
}
