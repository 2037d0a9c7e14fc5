// Package gitops versions the books directory with the git CLI.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by Commit when the staged tree is unchanged.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author is the identity recorded on commits.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

func (a Author) env() []string {
	return append(os.Environ(),
		"GIT_AUTHOR_NAME="+a.Name,
		"GIT_AUTHOR_EMAIL="+a.Email,
		"GIT_COMMITTER_NAME="+a.Name,
		"GIT_COMMITTER_EMAIL="+a.Email,
	)
}

// Init initializes a new git repository at dir.
func Init(ctx context.Context, dir string) error {
	if _, err := git(ctx, dir, nil, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Commit stages paths, or everything when none are given, and commits them.
// Returns the short commit hash.
func Commit(ctx context.Context, dir, message string, author Author, paths ...string) (string, error) {
	add := []string{"add", "-A"}
	if len(paths) > 0 {
		add = append(append(add, "--"), paths...)
	}
	if _, err := git(ctx, dir, nil, add...); err != nil {
		return "", err
	}

	// diff --quiet exits 1 when there are staged changes.
	if _, err := git(ctx, dir, nil, "diff", "--cached", "--quiet"); err == nil && hasHead(ctx, dir) {
		return "", ErrNothingToCommit
	}

	if _, err := git(ctx, dir, author.env(), "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}
	return Head(ctx, dir)
}

// Head returns the short hash of HEAD.
func Head(ctx context.Context, dir string) (string, error) {
	out, err := git(ctx, dir, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return out, nil
}

func hasHead(ctx context.Context, dir string) bool {
	_, err := git(ctx, dir, nil, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

func git(ctx context.Context, dir string, env []string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}
