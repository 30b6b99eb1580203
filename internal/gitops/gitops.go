// Package gitops versions budget files with the git command line.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotRepo is returned when a commit is requested outside a git repository.
var ErrNotRepo = errors.New("not a git repository")

// Init initializes a new git repository at dir.
func Init(dir string) error {
	cmd := exec.Command("git", "init", "--quiet")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// Commit stages paths (relative to dir) and commits them with author in
// "Name <email>" form. Returns the short commit hash, or "" when the paths
// have no staged changes.
func Commit(dir, message, author string, paths ...string) (string, error) {
	if !IsRepo(dir) {
		return "", fmt.Errorf("%w: %s", ErrNotRepo, dir)
	}

	// Stage.
	add := exec.Command("git", append([]string{"add", "--"}, paths...)...)
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// Nothing to commit.
	diff := exec.Command("git", append([]string{"diff", "--cached", "--quiet", "--"}, paths...)...)
	diff.Dir = dir
	if err := diff.Run(); err == nil {
		return "", nil
	}

	// Commit. The committer identity comes from the environment so commits
	// work on machines without a global git config.
	name, email := splitAuthor(author)
	commit := exec.Command("git", "commit", "--quiet", "-m", message, "--author", author)
	commit.Dir = dir
	commit.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+name,
		"GIT_COMMITTER_EMAIL="+email,
	)
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	// Get short hash.
	rev := exec.Command("git", "rev-parse", "--short", "HEAD")
	rev.Dir = dir
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func splitAuthor(author string) (name, email string) {
	name, email, ok := strings.Cut(author, "<")
	if !ok {
		return strings.TrimSpace(author), ""
	}
	return strings.TrimSpace(name), strings.TrimSuffix(strings.TrimSpace(email), ">")
}
