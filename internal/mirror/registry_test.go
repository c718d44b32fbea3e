package mirror

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashhhleyyy/gitit/internal/config"
	apperrors "github.com/ashhhleyyy/gitit/internal/errors"
)

func newTestConfig(names ...string) *config.Config {
	cfg := &config.Config{
		Sync: config.Sync{
			MirrorDir:          "mirrors",
			MaxConcurrentSyncs: 3,
			TimeoutMinutes:     1,
		},
	}
	for _, name := range names {
		cfg.Repos = append(cfg.Repos, config.Repo{
			Name:  name,
			URL:   "https://example.com/" + name + ".git",
			Title: name,
			Head:  "main",
		})
	}
	return cfg
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry(newTestConfig("alpha", "beta"))

	state, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", state.Name)
	assert.Equal(t, "mirrors/alpha.git", state.LocalPath)
	assert.Equal(t, StatusUnknown, state.Status)

	_, err = registry.Get("missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsRepoNotFound(err))
}

func TestRegistryListOrder(t *testing.T) {
	registry := NewRegistry(newTestConfig("alpha", "beta", "gamma"))

	states := registry.List()
	require.Len(t, states, 3)
	assert.Equal(t, "alpha", states[0].Name)
	assert.Equal(t, "beta", states[1].Name)
	assert.Equal(t, "gamma", states[2].Name)
}

func TestBeginSyncClaim(t *testing.T) {
	registry := NewRegistry(newTestConfig("alpha"))

	require.NoError(t, registry.BeginSync("alpha"))

	err := registry.BeginSync("alpha")
	require.Error(t, err)
	assert.True(t, apperrors.IsSyncInProgress(err))

	err = registry.BeginSync("missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsRepoNotFound(err))
}

func TestBeginSyncClaimIsAtomic(t *testing.T) {
	registry := NewRegistry(newTestConfig("alpha"))

	const workers = 50
	var wg sync.WaitGroup
	claims := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claims <- registry.BeginSync("alpha")
		}()
	}
	wg.Wait()
	close(claims)

	succeeded, rejected := 0, 0
	for err := range claims {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperrors.IsSyncInProgress(err))
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)
}

func TestCompleteSyncRecordsOutcome(t *testing.T) {
	registry := NewRegistry(newTestConfig("alpha"))

	t.Run("success", func(t *testing.T) {
		require.NoError(t, registry.BeginSync("alpha"))
		registry.CompleteSync("alpha", &SyncResult{Name: "alpha", Duration: 42}, nil)

		state, err := registry.Get("alpha")
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, state.Status)
		assert.False(t, state.IsSyncing)
		assert.False(t, state.LastSyncAt.IsZero())
		assert.Empty(t, state.LastError)
		assert.EqualValues(t, 42, state.SyncDuration)
	})

	t.Run("failure", func(t *testing.T) {
		require.NoError(t, registry.BeginSync("alpha"))
		registry.CompleteSync("alpha", nil, errors.New("remote hung up"))

		state, err := registry.Get("alpha")
		require.NoError(t, err)
		assert.Equal(t, StatusError, state.Status)
		assert.False(t, state.IsSyncing)
		assert.Equal(t, "remote hung up", state.LastError)
	})

	t.Run("slot reusable after completion", func(t *testing.T) {
		require.NoError(t, registry.BeginSync("alpha"))
		registry.CompleteSync("alpha", nil, nil)
	})
}
