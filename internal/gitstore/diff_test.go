package gitstore

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashhhleyyy/gitit/internal/gitstore/gitstoretest"
)

func TestDiffTrees(t *testing.T) {
	fx := buildFixture(t)
	store, err := Open(fx.path)
	require.NoError(t, err)

	rootOf := func(hash string) string {
		root, err := store.RootTree(hash)
		require.NoError(t, err)
		return root
	}
	r1, r2 := rootOf(fx.c1.String()), rootOf(fx.c2.String())

	t.Run("identical trees", func(t *testing.T) {
		changes, err := store.DiffTrees(r1, r1)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("added and modified, sorted by path", func(t *testing.T) {
		changes, err := store.DiffTrees(r1, r2)
		require.NoError(t, err)
		assert.Equal(t, []Change{
			{Path: "a.txt", Kind: ChangeModified},
			{Path: "docs/guide.md", Kind: ChangeAdded},
		}, changes)
	})

	t.Run("reversed direction inverts kinds", func(t *testing.T) {
		changes, err := store.DiffTrees(r2, r1)
		require.NoError(t, err)
		assert.Equal(t, []Change{
			{Path: "a.txt", Kind: ChangeModified},
			{Path: "docs/guide.md", Kind: ChangeRemoved},
		}, changes)
	})
}

func TestDiffTreesDirectoryReplacedByFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replace")
	repo := gitstoretest.Init(t, path)

	repo.WriteFile("thing/inner.txt", "inner\n")
	repo.WriteFile("keep.txt", "keep\n")
	d1 := repo.Commit("directory form", fixtureBase)

	repo.RemoveFile("thing")
	repo.WriteFile("thing", "flat\n")
	d2 := repo.Commit("file form", fixtureBase.Add(time.Hour))

	store, err := Open(path)
	require.NoError(t, err)
	r1, err := store.RootTree(d1.String())
	require.NoError(t, err)
	r2, err := store.RootTree(d2.String())
	require.NoError(t, err)

	changes, err := store.DiffTrees(r1, r2)
	require.NoError(t, err)
	assert.Equal(t, []Change{
		{Path: "thing", Kind: ChangeAdded},
		{Path: "thing/inner.txt", Kind: ChangeRemoved},
	}, changes)
}

func TestCommitPatch(t *testing.T) {
	fx := buildFixture(t)
	store, err := Open(fx.path)
	require.NoError(t, err)

	t.Run("root commit diffs against the empty tree", func(t *testing.T) {
		patch, err := store.CommitPatch(fx.c1.String())
		require.NoError(t, err)
		assert.Contains(t, patch, "README.md")
		assert.Contains(t, patch, "+alpha")
	})

	t.Run("patch against first parent", func(t *testing.T) {
		patch, err := store.CommitPatch(fx.c2.String())
		require.NoError(t, err)
		assert.Contains(t, patch, "-alpha\n")
		assert.Contains(t, patch, "+alpha two\n")
		assert.Contains(t, patch, "docs/guide.md")
		assert.False(t, strings.Contains(patch, "README.md"), "unchanged files stay out of the patch")
	})
}

func TestCommitStat(t *testing.T) {
	fx := buildFixture(t)
	store, err := Open(fx.path)
	require.NoError(t, err)

	t.Run("root commit", func(t *testing.T) {
		stat, err := store.CommitStat(fx.c1.String())
		require.NoError(t, err)
		assert.Equal(t, DiffStat{Added: 2, Removed: 0}, stat)
	})

	t.Run("modification and addition", func(t *testing.T) {
		stat, err := store.CommitStat(fx.c2.String())
		require.NoError(t, err)
		assert.Equal(t, DiffStat{Added: 2, Removed: 1}, stat)
	})

	t.Run("merge uses the first parent", func(t *testing.T) {
		stat, err := store.CommitStat(fx.c4.String())
		require.NoError(t, err)
		assert.Equal(t, DiffStat{Added: 1, Removed: 0}, stat)
	})
}
