package gitstore

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// EntryMode classifies a tree entry
type EntryMode string

const (
	ModeFile      EntryMode = "file"
	ModeDir       EntryMode = "dir"
	ModeSymlink   EntryMode = "symlink"
	ModeSubmodule EntryMode = "submodule"
)

// Signature identifies a commit author
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Commit is an immutable view of a commit object
type Commit struct {
	Hash    string    `json:"hash"`
	Parents []string  `json:"parents"`
	Author  Signature `json:"author"`
	When    time.Time `json:"when"`
	Summary string    `json:"summary"`
	Message string    `json:"message"`
}

// ShortHash returns the abbreviated commit hash
func (c Commit) ShortHash() string {
	return c.Hash[:7]
}

// TreeEntry is one entry of a tree object, in Git's canonical tree order
type TreeEntry struct {
	Name string    `json:"name"`
	Mode EntryMode `json:"mode"`
	Hash string    `json:"hash"`
}

// DiffStat summarizes line changes of a patch
type DiffStat struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

func newCommit(c *object.Commit) Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	summary, message, found := strings.Cut(c.Message, "\n")
	if !found {
		message = ""
	}
	return Commit{
		Hash:    c.Hash.String(),
		Parents: parents,
		Author: Signature{
			Name:  c.Author.Name,
			Email: c.Author.Email,
		},
		When:    c.Committer.When,
		Summary: strings.TrimSpace(summary),
		Message: strings.TrimSpace(message),
	}
}

func newTreeEntry(e object.TreeEntry) TreeEntry {
	return TreeEntry{
		Name: e.Name,
		Mode: entryMode(e.Mode),
		Hash: e.Hash.String(),
	}
}

func entryMode(mode filemode.FileMode) EntryMode {
	switch mode {
	case filemode.Dir:
		return ModeDir
	case filemode.Symlink:
		return ModeSymlink
	case filemode.Submodule:
		return ModeSubmodule
	default:
		return ModeFile
	}
}

func parseHash(s string) (plumbing.Hash, bool) {
	if !plumbing.IsHash(s) {
		return plumbing.ZeroHash, false
	}
	return plumbing.NewHash(s), true
}
