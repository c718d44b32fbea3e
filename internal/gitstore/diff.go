package gitstore

import (
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"

	apperrors "github.com/ashhhleyyy/gitit/internal/errors"
)

// ChangeKind labels one side of a diff entry
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// Change records a single differing path between two trees
type Change struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
}

// DiffTrees compares two root trees recursively and returns one Change per
// differing file path, sorted by path. Subtrees with equal hashes are skipped
// without recursing, so the cost scales with the size of the change, not the
// size of the repository.
func (s *Store) DiffTrees(aHash, bHash string) ([]Change, error) {
	if aHash == bHash {
		return nil, nil
	}
	var a, b []TreeEntry
	var err error
	if a, err = s.ReadTree(aHash); err != nil {
		return nil, err
	}
	if b, err = s.ReadTree(bHash); err != nil {
		return nil, err
	}

	var changes []Change
	if err := s.diffEntries("", a, b, &changes); err != nil {
		return nil, err
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

func (s *Store) diffEntries(prefix string, a, b []TreeEntry, changes *[]Change) error {
	byName := func(entries []TreeEntry) map[string]TreeEntry {
		m := make(map[string]TreeEntry, len(entries))
		for _, e := range entries {
			m[e.Name] = e
		}
		return m
	}
	am, bm := byName(a), byName(b)

	names := make([]string, 0, len(am)+len(bm))
	for name := range am {
		names = append(names, name)
	}
	for name := range bm {
		if _, ok := am[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		ae, inA := am[name]
		be, inB := bm[name]
		path := joinPath(prefix, name)

		switch {
		case !inA:
			if err := s.emitAll(path, be, ChangeAdded, changes); err != nil {
				return err
			}
		case !inB:
			if err := s.emitAll(path, ae, ChangeRemoved, changes); err != nil {
				return err
			}
		case ae.Hash == be.Hash:
			// identical content, skip without recursing
		case ae.Mode == ModeDir && be.Mode == ModeDir:
			asub, err := s.ReadTree(ae.Hash)
			if err != nil {
				return err
			}
			bsub, err := s.ReadTree(be.Hash)
			if err != nil {
				return err
			}
			if err := s.diffEntries(path, asub, bsub, changes); err != nil {
				return err
			}
		case ae.Mode == ModeDir || be.Mode == ModeDir:
			// a file replaced a directory or vice versa
			if err := s.emitAll(path, ae, ChangeRemoved, changes); err != nil {
				return err
			}
			if err := s.emitAll(path, be, ChangeAdded, changes); err != nil {
				return err
			}
		default:
			*changes = append(*changes, Change{Path: path, Kind: ChangeModified})
		}
	}
	return nil
}

// emitAll emits a change record for a single entry, expanding directories
// into one record per contained file.
func (s *Store) emitAll(path string, entry TreeEntry, kind ChangeKind, changes *[]Change) error {
	if entry.Mode != ModeDir {
		*changes = append(*changes, Change{Path: path, Kind: kind})
		return nil
	}
	entries, err := s.ReadTree(entry.Hash)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.emitAll(joinPath(path, e.Name), e, kind, changes); err != nil {
			return err
		}
	}
	return nil
}

// CommitPatch renders the unified diff of a commit against its first parent.
// Root commits are diffed against the empty tree.
func (s *Store) CommitPatch(hash string) (string, error) {
	patch, err := s.patchForCommit(hash)
	if err != nil {
		return "", err
	}
	return patch.String(), nil
}

// CommitStat returns the added/removed line counts of a commit's patch
// against its first parent.
func (s *Store) CommitStat(hash string) (DiffStat, error) {
	patch, err := s.patchForCommit(hash)
	if err != nil {
		return DiffStat{}, err
	}
	var stat DiffStat
	for _, fs := range patch.Stats() {
		stat.Added += fs.Addition
		stat.Removed += fs.Deletion
	}
	return stat, nil
}

func (s *Store) patchForCommit(hash string) (*object.Patch, error) {
	h, ok := parseHash(hash)
	if !ok {
		return nil, apperrors.NewObjectNotFoundError(hash, nil)
	}
	commit, err := s.commitObject(h)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, apperrors.NewCorruptObjectError(hash, err)
	}
	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, apperrors.NewCorruptObjectError(hash, err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, apperrors.NewCorruptObjectError(hash, err)
		}
	}

	diff, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, apperrors.NewCorruptObjectError(hash, err)
	}
	patch, err := diff.Patch()
	if err != nil {
		return nil, apperrors.NewCorruptObjectError(hash, err)
	}
	return patch, nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.Join([]string{prefix, name}, "/")
}
