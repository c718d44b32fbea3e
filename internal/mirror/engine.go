package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"

	"github.com/ashhhleyyy/gitit/internal/config"
	"github.com/ashhhleyyy/gitit/internal/errors"
)

// transport performs the network-facing git operations. Split out so engine
// tests can run without a remote.
type transport interface {
	// Clone mirror-clones url into path, which must not exist yet
	Clone(ctx context.Context, url, path string) error

	// Fetch updates an existing mirror from its origin, pruning refs deleted
	// upstream. Returns false when the mirror was already up to date.
	Fetch(ctx context.Context, path string) (bool, error)
}

// GitEngine synchronizes one repository's local bare mirror with its
// upstream. A first sync clones into a temporary directory and atomically
// renames it into place, so a half-written mirror is never observable at the
// mirror path; later syncs fetch in place and rely on git's
// write-objects-then-update-refs ordering to keep concurrent readers
// consistent.
type GitEngine struct {
	cfg       *config.Config
	logger    *logrus.Logger
	transport transport
}

// NewEngine creates a sync engine backed by go-git
func NewEngine(cfg *config.Config, logger *logrus.Logger) *GitEngine {
	return &GitEngine{
		cfg:       cfg,
		logger:    logger,
		transport: gogitTransport{},
	}
}

// Sync ensures the local mirror for repo exists and matches its upstream.
// On failure the mirror is left in its pre-sync state (or absent, for a
// failed first clone).
func (e *GitEngine) Sync(ctx context.Context, repo config.Repo) (*SyncResult, error) {
	logger := e.logger.WithFields(logrus.Fields{
		"repository": repo.Name,
		"url":        repo.URL,
	})

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Sync.Timeout())
	defer cancel()

	path := e.cfg.MirrorPath(repo.Name)
	start := time.Now()

	_, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		logger.Info("Mirror absent, cloning")
		if err := e.clone(ctx, repo, path); err != nil {
			logger.WithError(err).Error("Clone failed")
			return nil, err
		}
		logger.WithField("duration", time.Since(start)).Info("Clone completed")
		return &SyncResult{
			Name:     repo.Name,
			Head:     repo.Head,
			Cloned:   true,
			Changed:  true,
			Duration: time.Since(start),
		}, nil
	case err != nil:
		return nil, errors.NewSyncError(fmt.Sprintf("failed to stat mirror path %s", path), err)
	}

	logger.Info("Fetching")
	changed, err := e.transport.Fetch(ctx, path)
	if err != nil {
		logger.WithError(err).Error("Fetch failed")
		return nil, errors.NewSyncError(fmt.Sprintf("failed to fetch %s", repo.URL), err)
	}
	if err := e.finalize(path, repo); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"changed":  changed,
		"duration": time.Since(start),
	}).Info("Fetch completed")
	return &SyncResult{
		Name:     repo.Name,
		Head:     repo.Head,
		Changed:  changed,
		Duration: time.Since(start),
	}, nil
}

// clone performs the clone-into-temp-then-rename dance. The temp directory
// lives next to the final path so the rename stays on one filesystem.
func (e *GitEngine) clone(ctx context.Context, repo config.Repo, path string) error {
	if err := os.MkdirAll(e.cfg.Sync.MirrorDir, 0o755); err != nil {
		return errors.NewSyncError("failed to create mirror directory", err)
	}

	tmp := filepath.Join(e.cfg.Sync.MirrorDir, ".tmp-"+repo.Name+".git")
	// leftovers from a crashed previous clone
	if err := os.RemoveAll(tmp); err != nil {
		return errors.NewSyncError("failed to clear temporary clone directory", err)
	}

	if err := e.transport.Clone(ctx, repo.URL, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return errors.NewSyncError(fmt.Sprintf("failed to clone %s", repo.URL), err)
	}
	if err := e.finalize(tmp, repo); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.RemoveAll(tmp)
		return errors.NewSyncError("failed to move clone into place", err)
	}
	return nil
}

// finalize writes the dumb-HTTP ref advertisement (info/refs) and points
// HEAD at the configured head branch.
func (e *GitEngine) finalize(path string, repo config.Repo) error {
	r, err := git.PlainOpen(path)
	if err != nil {
		return errors.NewSyncError(fmt.Sprintf("failed to open mirror at %s", path), err)
	}

	if err := writeRefsInfo(r, path); err != nil {
		return err
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(repo.Head))
	if err := r.Storer.SetReference(head); err != nil {
		return errors.NewSyncError("failed to update HEAD", err)
	}
	return nil
}

func writeRefsInfo(r *git.Repository, path string) error {
	iter, err := r.References()
	if err != nil {
		return errors.NewSyncError("failed to list references", err)
	}

	var lines []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || ref.Name() == plumbing.HEAD {
			return nil
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\n", ref.Hash(), ref.Name()))
		return nil
	})
	if err != nil {
		return errors.NewSyncError("failed to iterate references", err)
	}
	sort.Strings(lines)

	infoDir := filepath.Join(path, "info")
	if err := os.MkdirAll(infoDir, 0o755); err != nil {
		return errors.NewSyncError("failed to create info directory", err)
	}
	if err := os.WriteFile(filepath.Join(infoDir, "refs"), []byte(strings.Join(lines, "")), 0o644); err != nil {
		return errors.NewSyncError("failed to write info/refs", err)
	}
	return nil
}

// gogitTransport is the production transport backed by go-git
type gogitTransport struct{}

func (gogitTransport) Clone(ctx context.Context, url, path string) error {
	_, err := git.PlainCloneContext(ctx, path, true, &git.CloneOptions{
		URL:    url,
		Mirror: true,
		Tags:   git.AllTags,
	})
	return err
}

func (gogitTransport) Fetch(ctx context.Context, path string) (bool, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return false, err
	}
	err = r.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{"+refs/*:refs/*"},
		Prune:      true,
		Force:      true,
		Tags:       git.AllTags,
	})
	if err == git.NoErrAlreadyUpToDate {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
