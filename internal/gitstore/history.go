package gitstore

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	apperrors "github.com/ashhhleyyy/gitit/internal/errors"
)

// History walks the ancestry of a commit in reverse committer-time order and
// returns up to limit commits; limit <= 0 exhausts reachable history. Each
// traversal is independent, and commits reachable through converging merge
// branches are yielded exactly once (the iterator keeps a visited set).
func (s *Store) History(startHash string, limit int) ([]Commit, error) {
	h, ok := parseHash(startHash)
	if !ok {
		return nil, apperrors.NewObjectNotFoundError(startHash, nil)
	}
	start, err := s.commitObject(h)
	if err != nil {
		return nil, err
	}

	seen := make(map[plumbing.Hash]bool)
	iter := object.NewCommitIterCTime(start, seen, nil)
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, newCommit(c))
		if limit > 0 && len(commits) >= limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewCorruptObjectError(startHash, err)
	}
	return commits, nil
}
