package gitstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	apperrors "github.com/ashhhleyyy/gitit/internal/errors"
)

// Store provides read-only, content-addressed access to a bare repository.
// All methods are side-effect free; a Store is cheap to open and meant to be
// created per query rather than shared.
type Store struct {
	repo *git.Repository
	path string
}

// Open opens the bare repository at path
func Open(path string) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, apperrors.NewRepoNotFoundError(path)
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to open repository at %s", path), err)
	}
	return &Store{repo: repo, path: path}, nil
}

// Path returns the on-disk location of the repository
func (s *Store) Path() string {
	return s.path
}

// ResolveRef resolves a branch, tag, HEAD or (short) hash to a commit hash
func (s *Store) ResolveRef(ref string) (string, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", apperrors.NewRefNotFoundError(ref, err)
	}
	return hash.String(), nil
}

// ReadCommit reads a commit object by hash
func (s *Store) ReadCommit(hash string) (Commit, error) {
	h, ok := parseHash(hash)
	if !ok {
		return Commit{}, apperrors.NewObjectNotFoundError(hash, nil)
	}
	commit, err := s.commitObject(h)
	if err != nil {
		return Commit{}, err
	}
	return newCommit(commit), nil
}

// RootTree returns the hash of a commit's root tree
func (s *Store) RootTree(commitHash string) (string, error) {
	h, ok := parseHash(commitHash)
	if !ok {
		return "", apperrors.NewObjectNotFoundError(commitHash, nil)
	}
	commit, err := s.commitObject(h)
	if err != nil {
		return "", err
	}
	return commit.TreeHash.String(), nil
}

// ReadTree reads a tree object's entries, in Git's canonical tree order
func (s *Store) ReadTree(hash string) ([]TreeEntry, error) {
	h, ok := parseHash(hash)
	if !ok {
		return nil, apperrors.NewObjectNotFoundError(hash, nil)
	}
	tree, err := s.treeObject(h)
	if err != nil {
		return nil, err
	}
	entries := make([]TreeEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		entries = append(entries, newTreeEntry(entry))
	}
	return entries, nil
}

// ReadBlob reads a blob's raw bytes
func (s *Store) ReadBlob(hash string) ([]byte, error) {
	h, ok := parseHash(hash)
	if !ok {
		return nil, apperrors.NewObjectNotFoundError(hash, nil)
	}
	blob, err := s.repo.BlobObject(h)
	if err != nil {
		return nil, s.objectError(hash, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, apperrors.NewCorruptObjectError(hash, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewCorruptObjectError(hash, err)
	}
	return data, nil
}

// WalkPath descends from a root tree along slash-separated path segments and
// returns the hash and mode of the target object. The empty path names the
// root tree itself.
func (s *Store) WalkPath(treeHash, path string) (string, EntryMode, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return treeHash, ModeDir, nil
	}

	current := treeHash
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		entries, err := s.ReadTree(current)
		if err != nil {
			return "", "", err
		}
		entry, found := findEntry(entries, segment)
		if !found {
			return "", "", apperrors.NewPathNotFoundError(path)
		}
		if i == len(segments)-1 {
			return entry.Hash, entry.Mode, nil
		}
		if entry.Mode != ModeDir {
			return "", "", apperrors.NewNotADirectoryError(strings.Join(segments[:i+1], "/"))
		}
		current = entry.Hash
	}
	// unreachable; the last segment always returns above
	return "", "", apperrors.NewPathNotFoundError(path)
}

// IsBinary reports whether data looks like binary content, using Git's
// NUL-byte heuristic over the first 8000 bytes.
func IsBinary(data []byte) bool {
	if len(data) > 8000 {
		data = data[:8000]
	}
	return bytes.IndexByte(data, 0) >= 0
}

func findEntry(entries []TreeEntry, name string) (TreeEntry, bool) {
	for _, entry := range entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return TreeEntry{}, false
}

func (s *Store) commitObject(h plumbing.Hash) (*object.Commit, error) {
	commit, err := s.repo.CommitObject(h)
	if err != nil {
		return nil, s.objectError(h.String(), err)
	}
	return commit, nil
}

func (s *Store) treeObject(h plumbing.Hash) (*object.Tree, error) {
	tree, err := s.repo.TreeObject(h)
	if err != nil {
		return nil, s.objectError(h.String(), err)
	}
	return tree, nil
}

// objectError maps go-git object lookup failures onto the error taxonomy.
// A missing or wrongly-typed object is ObjectNotFound; anything else means
// the object exists but could not be decoded.
func (s *Store) objectError(hash string, err error) error {
	if errors.Is(err, plumbing.ErrObjectNotFound) || errors.Is(err, object.ErrUnsupportedObject) {
		return apperrors.NewObjectNotFoundError(hash, err)
	}
	return apperrors.NewCorruptObjectError(hash, err)
}
