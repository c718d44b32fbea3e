package browse

import (
	"io"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashhhleyyy/gitit/internal/config"
	apperrors "github.com/ashhhleyyy/gitit/internal/errors"
	"github.com/ashhhleyyy/gitit/internal/gitstore"
	"github.com/ashhhleyyy/gitit/internal/gitstore/gitstoretest"
	"github.com/ashhhleyyy/gitit/internal/mirror"
)

type serviceFixture struct {
	service  *Service
	registry *mirror.Registry
	c1, c2   plumbing.Hash
}

// newServiceFixture wires a Service over two configured repositories: alpha
// has a mirror on disk with two commits, beta was never synced.
func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	cfg := &config.Config{
		Sync: config.Sync{MirrorDir: t.TempDir()},
		Repos: []config.Repo{
			{Name: "alpha", URL: "https://example.com/alpha.git", Title: "Alpha", Head: "master"},
			{Name: "beta", URL: "https://example.com/beta.git", Title: "Beta", Head: "main"},
		},
	}

	repo := gitstoretest.Init(t, cfg.MirrorPath("alpha"))
	base := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	repo.WriteFile("README.md", "# alpha\n")
	repo.WriteFile("docs/guide.md", "guide\n")
	c1 := repo.Commit("initial commit", base)
	repo.WriteFile("main.go", "package main\n")
	c2 := repo.Commit("add main", base.Add(time.Hour))

	registry := mirror.NewRegistry(cfg)
	require.NoError(t, registry.BeginSync("alpha"))
	registry.CompleteSync("alpha", &mirror.SyncResult{Name: "alpha"}, nil)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return serviceFixture{
		service:  NewService(registry, logger),
		registry: registry,
		c1:       c1,
		c2:       c2,
	}
}

func TestListDirectory(t *testing.T) {
	fx := newServiceFixture(t)

	t.Run("root", func(t *testing.T) {
		entries, err := fx.service.ListDirectory("alpha", "HEAD", "")
		require.NoError(t, err)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		assert.Equal(t, []string{"README.md", "docs", "main.go"}, names)
	})

	t.Run("subdirectory", func(t *testing.T) {
		entries, err := fx.service.ListDirectory("alpha", "HEAD", "docs")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "guide.md", entries[0].Name)
		assert.Equal(t, gitstore.ModeFile, entries[0].Mode)
	})

	t.Run("path is a file", func(t *testing.T) {
		_, err := fx.service.ListDirectory("alpha", "HEAD", "README.md")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotADirectory(err))
	})

	t.Run("older commit by hash", func(t *testing.T) {
		entries, err := fx.service.ListDirectory("alpha", fx.c1.String(), "")
		require.NoError(t, err)
		assert.Len(t, entries, 2, "main.go does not exist yet at the first commit")
	})
}

func TestReadFile(t *testing.T) {
	fx := newServiceFixture(t)

	t.Run("text file", func(t *testing.T) {
		file, err := fx.service.ReadFile("alpha", "HEAD", "docs/guide.md")
		require.NoError(t, err)
		assert.Equal(t, "docs/guide.md", file.Path)
		assert.Equal(t, []byte("guide\n"), file.Content)
		assert.Equal(t, 6, file.Size)
		assert.False(t, file.Binary)
	})

	t.Run("path is a directory", func(t *testing.T) {
		_, err := fx.service.ReadFile("alpha", "HEAD", "docs")
		require.Error(t, err)
		assert.True(t, apperrors.IsPathNotFound(err))
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := fx.service.ReadFile("alpha", "HEAD", "nope.txt")
		require.Error(t, err)
		assert.True(t, apperrors.IsPathNotFound(err))
	})

	t.Run("unknown ref", func(t *testing.T) {
		_, err := fx.service.ReadFile("alpha", "no-such-branch", "README.md")
		require.Error(t, err)
		assert.True(t, apperrors.IsRefNotFound(err))
	})
}

func TestCommitLog(t *testing.T) {
	fx := newServiceFixture(t)

	commits, err := fx.service.CommitLog("alpha", "HEAD", 0)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, fx.c2.String(), commits[0].Hash)
	assert.Equal(t, fx.c1.String(), commits[1].Hash)

	limited, err := fx.service.CommitLog("alpha", "HEAD", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, fx.c2.String(), limited[0].Hash)
}

func TestCommitDetail(t *testing.T) {
	fx := newServiceFixture(t)

	detail, err := fx.service.Commit("alpha", fx.c2.String())
	require.NoError(t, err)
	assert.Equal(t, "add main", detail.Commit.Summary)
	assert.Equal(t, gitstore.DiffStat{Added: 1, Removed: 0}, detail.Stat)
	assert.Contains(t, detail.Patch, "+package main")
}

func TestDiff(t *testing.T) {
	fx := newServiceFixture(t)

	changes, err := fx.service.Diff("alpha", fx.c1.String(), fx.c2.String())
	require.NoError(t, err)
	assert.Equal(t, []gitstore.Change{
		{Path: "main.go", Kind: gitstore.ChangeAdded},
	}, changes)

	same, err := fx.service.Diff("alpha", fx.c2.String(), fx.c2.String())
	require.NoError(t, err)
	assert.Empty(t, same)
}

func TestMirrorStatus(t *testing.T) {
	fx := newServiceFixture(t)

	status, err := fx.service.MirrorStatus("alpha")
	require.NoError(t, err)
	assert.Equal(t, mirror.StatusSuccess, status.Status)

	_, err = fx.service.MirrorStatus("missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsRepoNotFound(err))
}

func TestOpenGuards(t *testing.T) {
	fx := newServiceFixture(t)

	t.Run("unknown repository", func(t *testing.T) {
		_, err := fx.service.CommitLog("missing", "HEAD", 0)
		require.Error(t, err)
		assert.True(t, apperrors.IsRepoNotFound(err))
	})

	t.Run("never synced", func(t *testing.T) {
		_, err := fx.service.CommitLog("beta", "HEAD", 0)
		require.Error(t, err)
		assert.True(t, apperrors.IsRepoNotSynced(err))
	})
}

func TestBrowseSurvivesRestart(t *testing.T) {
	// a mirror left on disk by an earlier run is browsable before any sync
	cfg := &config.Config{
		Sync: config.Sync{MirrorDir: t.TempDir()},
		Repos: []config.Repo{
			{Name: "alpha", URL: "https://example.com/alpha.git", Title: "Alpha", Head: "master"},
		},
	}
	repo := gitstoretest.Init(t, cfg.MirrorPath("alpha"))
	repo.WriteFile("README.md", "# alpha\n")
	repo.Commit("initial commit", time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	service := NewService(mirror.NewRegistry(cfg), logger)

	commits, err := service.CommitLog("alpha", "HEAD", 0)
	require.NoError(t, err)
	assert.Len(t, commits, 1)
}
