// Package gitops records trip history by shelling out to the git binary.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoChanges is returned by Commit when the working tree is clean.
var ErrNoChanges = errors.New("nothing to commit")

// Author identifies who commits trip changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Repo is a trip directory under git.
type Repo struct {
	Dir    string
	Author Author
}

// Open returns a Repo for dir. It does not check that dir is a repository.
func Open(dir string, author Author) *Repo {
	return &Repo{Dir: dir, Author: author}
}

// Init creates the repository if dir is not one already.
func (r *Repo) Init() error {
	if IsRepo(r.Dir) {
		return nil
	}
	if _, err := r.git("init", "-q"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// HasChanges reports whether the working tree has uncommitted changes,
// untracked files included.
func (r *Repo) HasChanges() (bool, error) {
	out, err := r.git("status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// Commit stages everything and commits it. Returns the short hash, or
// ErrNoChanges when there is nothing to record.
func (r *Repo) Commit(message string) (string, error) {
	if _, err := r.git("add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	dirty, err := r.HasChanges()
	if err != nil {
		return "", err
	}
	if !dirty {
		return "", ErrNoChanges
	}

	if _, err := r.git("commit", "-q", "-m", message, "--author", r.Author.String()); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	out, err := r.git("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Subjects returns the subject lines of the last n commits, newest first.
func (r *Repo) Subjects(n int) ([]string, error) {
	out, err := r.git("log", fmt.Sprintf("-%d", n), "--format=%s")
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// git runs a git subcommand in the repo. The committer identity follows the
// author so commits work without a global git config.
func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.Author.Name,
		"GIT_COMMITTER_EMAIL="+r.Author.Email,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
