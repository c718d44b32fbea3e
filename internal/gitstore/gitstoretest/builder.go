// Package gitstoretest builds small on-disk fixture repositories for tests.
package gitstoretest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo wraps a writable repository under construction
type Repo struct {
	t    *testing.T
	Path string
	Git  *git.Repository
	wt   *git.Worktree
}

// Init creates a fresh non-bare repository at path
func Init(t *testing.T, path string) *Repo {
	t.Helper()
	repo, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("failed to init fixture repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return &Repo{t: t, Path: path, Git: repo, wt: wt}
}

// WriteFile writes a file into the worktree, creating parent directories
func (r *Repo) WriteFile(name, content string) {
	r.t.Helper()
	full := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write %s: %v", name, err)
	}
}

// RemoveFile removes a file or directory tree from the worktree
func (r *Repo) RemoveFile(name string) {
	r.t.Helper()
	if err := os.RemoveAll(filepath.Join(r.Path, name)); err != nil {
		r.t.Fatalf("failed to remove %s: %v", name, err)
	}
}

// Commit stages all worktree changes and commits them with a fixed author
// and the given timestamp. Extra parents override the default HEAD parent,
// which allows building branch and merge shapes without checkouts.
func (r *Repo) Commit(message string, when time.Time, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	if err := r.wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		r.t.Fatalf("failed to stage changes: %v", err)
	}
	sig := &object.Signature{
		Name:  "Test Author",
		Email: "test@example.com",
		When:  when,
	}
	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

// SetBranch points a branch ref at a commit
func (r *Repo) SetBranch(name string, hash plumbing.Hash) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	if err := r.Git.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("failed to set branch %s: %v", name, err)
	}
}

// SetTag points a lightweight tag at a commit
func (r *Repo) SetTag(name string, hash plumbing.Hash) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), hash)
	if err := r.Git.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("failed to set tag %s: %v", name, err)
	}
}
