package browse

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ashhhleyyy/gitit/internal/errors"
	"github.com/ashhhleyyy/gitit/internal/gitstore"
	"github.com/ashhhleyyy/gitit/internal/mirror"
)

// File is the result of reading a blob at a path
type File struct {
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Binary  bool   `json:"binary"`
	Content []byte `json:"content"`
}

// CommitDetail is a commit together with its rendered patch against the
// first parent.
type CommitDetail struct {
	Commit gitstore.Commit   `json:"commit"`
	Stat   gitstore.DiffStat `json:"stat"`
	Patch  string            `json:"patch"`
}

// Service composes object store reads into the views consumed by the
// presentation layer. Queries are stateless: each one opens the mirror
// fresh and never mutates it, so any number can run concurrently with each
// other and with an in-flight sync.
type Service struct {
	registry *mirror.Registry
	logger   *logrus.Logger
}

// NewService creates a browsing query service
func NewService(registry *mirror.Registry, logger *logrus.Logger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// ListDirectory returns the sorted entries of the tree at path under ref
func (s *Service) ListDirectory(repo, ref, path string) ([]gitstore.TreeEntry, error) {
	store, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	hash, mode, err := s.walk(store, ref, path)
	if err != nil {
		return nil, err
	}
	if mode != gitstore.ModeDir {
		return nil, errors.NewNotADirectoryError(path)
	}
	return store.ReadTree(hash)
}

// ReadFile returns the blob at path under ref, plus size and a binary
// heuristic; truncation policy is the caller's concern.
func (s *Service) ReadFile(repo, ref, path string) (*File, error) {
	store, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	hash, mode, err := s.walk(store, ref, path)
	if err != nil {
		return nil, err
	}
	if mode == gitstore.ModeDir || mode == gitstore.ModeSubmodule {
		return nil, errors.NewPathNotFoundError(fmt.Sprintf("%s is not a file", path))
	}
	data, err := store.ReadBlob(hash)
	if err != nil {
		return nil, err
	}
	return &File{
		Path:    path,
		Size:    len(data),
		Binary:  gitstore.IsBinary(data),
		Content: data,
	}, nil
}

// CommitLog returns up to limit commits reachable from ref, newest first
func (s *Service) CommitLog(repo, ref string, limit int) ([]gitstore.Commit, error) {
	store, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	hash, err := store.ResolveRef(ref)
	if err != nil {
		return nil, err
	}
	return store.History(hash, limit)
}

// Commit returns a single commit with its patch and diffstat
func (s *Service) Commit(repo, ref string) (*CommitDetail, error) {
	store, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	hash, err := store.ResolveRef(ref)
	if err != nil {
		return nil, err
	}
	commit, err := store.ReadCommit(hash)
	if err != nil {
		return nil, err
	}
	stat, err := store.CommitStat(hash)
	if err != nil {
		return nil, err
	}
	patch, err := store.CommitPatch(hash)
	if err != nil {
		return nil, err
	}
	return &CommitDetail{Commit: commit, Stat: stat, Patch: patch}, nil
}

// Diff returns the set of paths differing between two commits, comparing
// their root trees recursively.
func (s *Service) Diff(repo, refA, refB string) ([]gitstore.Change, error) {
	store, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	treeA, err := s.rootTree(store, refA)
	if err != nil {
		return nil, err
	}
	treeB, err := s.rootTree(store, refB)
	if err != nil {
		return nil, err
	}
	return store.DiffTrees(treeA, treeB)
}

// MirrorStatus returns the registry state for a repository
func (s *Service) MirrorStatus(repo string) (mirror.State, error) {
	return s.registry.Get(repo)
}

// open checks the registry and opens the repository's mirror. A repository
// counts as synced if a sync succeeded this process, or if a mirror from an
// earlier run is already on disk.
func (s *Service) open(name string) (*gitstore.Store, error) {
	state, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if state.Status != mirror.StatusSuccess {
		if _, err := os.Stat(state.LocalPath); os.IsNotExist(err) {
			return nil, errors.NewRepoNotSyncedError(name)
		}
	}
	return gitstore.Open(state.LocalPath)
}

func (s *Service) walk(store *gitstore.Store, ref, path string) (string, gitstore.EntryMode, error) {
	commitHash, err := store.ResolveRef(ref)
	if err != nil {
		return "", "", err
	}
	rootTree, err := store.RootTree(commitHash)
	if err != nil {
		return "", "", err
	}
	return store.WalkPath(rootTree, path)
}

func (s *Service) rootTree(store *gitstore.Store, ref string) (string, error) {
	hash, err := store.ResolveRef(ref)
	if err != nil {
		return "", err
	}
	return store.RootTree(hash)
}
