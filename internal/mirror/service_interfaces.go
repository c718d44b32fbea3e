package mirror

import (
	"context"

	"github.com/ashhhleyyy/gitit/internal/config"
)

// Engine defines the interface for synchronizing a single mirror
type Engine interface {
	// Sync ensures the local mirror exists and matches its upstream
	Sync(ctx context.Context, repo config.Repo) (*SyncResult, error)
}

// Syncer defines the trigger surface consumed by the CLI and webhook layers
type Syncer interface {
	// SyncByName syncs a single repository by configured name
	SyncByName(ctx context.Context, name string) (*SyncResult, error)

	// SyncAll syncs every configured repository and reports the aggregate
	SyncAll(ctx context.Context) []RepoResult
}
