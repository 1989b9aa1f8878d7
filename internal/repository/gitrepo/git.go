// Package gitrepo stores workspaces and articles in git working trees
// using the git command line.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Identity used when the repository has no user.email configured.
const (
	fallbackName  = "Blog Writer"
	fallbackEmail = "blog-writer@localhost"
)

// runner executes git commands in a working tree.
type runner struct {
	bin    string
	logger *slog.Logger
}

func newRunner(logger *slog.Logger) *runner {
	return &runner{bin: "git", logger: logger}
}

// run executes git with args in dir and returns trimmed stdout. On failure
// the error carries git's stderr.
func (r *runner) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		r.logger.Debug("git command failed",
			"dir", dir,
			"args", args,
			"error", err,
			"output", msg,
		)
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// identityArgs returns -c overrides when no committer email is configured,
// so commits succeed on machines that never ran git config.
func (r *runner) identityArgs(ctx context.Context, dir string) []string {
	if email, err := r.run(ctx, dir, "config", "user.email"); err == nil && email != "" {
		return nil
	}
	return []string{"-c", "user.name=" + fallbackName, "-c", "user.email=" + fallbackEmail}
}

// commit stages paths and commits them. It returns the HEAD hash, which is
// unchanged when the paths had nothing to commit.
func (r *runner) commit(ctx context.Context, dir, message string, paths ...string) (string, error) {
	add := append([]string{"add", "--"}, paths...)
	if _, err := r.run(ctx, dir, add...); err != nil {
		return "", err
	}

	args := append(r.identityArgs(ctx, dir), "commit", "-m", message)
	head, err := r.run(ctx, dir, "rev-parse", "--verify", "-q", "HEAD")
	if err == nil {
		status := append([]string{"status", "--porcelain", "--"}, paths...)
		changes, err := r.run(ctx, dir, status...)
		if err != nil {
			return "", err
		}
		if changes == "" {
			return head, nil
		}
		// commit only these paths, leaving anything else staged alone
		args = append(append(args, "--"), paths...)
	}

	if _, err := r.run(ctx, dir, args...); err != nil {
		return "", err
	}
	return r.run(ctx, dir, "rev-parse", "HEAD")
}
