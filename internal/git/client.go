// Package git lists changed paths by running the git binary in a checkout.
package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/logger"
)

// ExitError is returned by a CommandFunc when the process ran and exited
// with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("exit status %d: %s", e.Code, e.Stderr)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// CommandFunc runs name with args in dir and returns its stdout.
type CommandFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecCommand runs a real process.
func ExecCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return out, &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(string(exitErr.Stderr))}
		}
		return out, err
	}
	return out, nil
}

// Client runs git in a working directory.
type Client struct {
	binary string
	dir    string
	run    CommandFunc
	log    *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCommand replaces the process runner, mainly for tests.
func WithCommand(run CommandFunc) Option {
	return func(c *Client) { c.run = run }
}

// New creates a git client rooted at dir.
func New(binary, dir string, log *logger.Logger, opts ...Option) *Client {
	if binary == "" {
		binary = "git"
	}
	c := &Client{
		binary: binary,
		dir:    dir,
		run:    ExecCommand,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Diff lists the paths changed on to since it forked from from
// (from...to), limited to the working directory.
func (c *Client) Diff(ctx context.Context, from, to string) ([]string, error) {
	out, err := c.git(ctx, "diff", "--name-only", from+"..."+to, "--", ".")
	if err != nil {
		return nil, err
	}
	return ParseNameOnly(out), nil
}

// DiffTrees lists the paths whose content differs between the trees of from
// and to, limited to the working directory.
func (c *Client) DiffTrees(ctx context.Context, from, to string) ([]string, error) {
	out, err := c.git(ctx, "diff", "--name-only", from, to, "--", ".")
	if err != nil {
		return nil, err
	}
	return ParseNameOnly(out), nil
}

// LogCommit lists the paths a single commit changed relative to its first parent.
func (c *Client) LogCommit(ctx context.Context, commit string) ([]string, error) {
	out, err := c.git(ctx, "log", "-m", "--first-parent", "-1", "--name-only", "--pretty=format:", commit)
	if err != nil {
		return nil, err
	}
	return ParseNameOnly(out), nil
}

// IsReachable reports whether rev names a commit present in the local object
// store. A shallow or re-initialized checkout may have lost it.
func (c *Client) IsReachable(ctx context.Context, rev string) (bool, error) {
	_, err := c.git(ctx, "cat-file", "-e", rev+"^{commit}")
	if err == nil {
		return true, nil
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		c.log.Debugf("revision %s is not reachable: %s", rev, exitErr.Stderr)
		return false, nil
	}
	return false, err
}

// git runs one git command. Every non-zero exit is a tool failure; callers
// that tolerate specific exits inspect the wrapped *ExitError.
func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-c", "core.quotepath=off"}, args...)
	command := c.binary + " " + strings.Join(full, " ")
	c.log.Debugf("> Executing: %s", command)

	out, err := c.run(ctx, c.dir, c.binary, full...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", errors.Cancelled(ctxErr)
	}
	if err != nil {
		return "", errors.ToolFailed(err, command)
	}
	return string(out), nil
}
