package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ashhhleyyy/gitit/internal/config"
	"github.com/ashhhleyyy/gitit/internal/errors"
)

// Scheduler coordinates sync operations across all configured repositories.
// Per-repository serialization comes from the Registry claim; cross-repository
// parallelism is bounded by a worker semaphore so a large config cannot open
// an unbounded number of network connections at once.
type Scheduler struct {
	engine   Engine
	registry *Registry
	cfg      *config.Config
	logger   *logrus.Logger
}

// NewScheduler creates a sync scheduler
func NewScheduler(engine Engine, registry *Registry, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// SyncByName syncs a single repository. A request for a repository that is
// already syncing is rejected immediately with SyncInProgress rather than
// queued; rapid repeated webhook pushes collapse into the in-flight sync and
// the next trigger picks up the remainder.
func (s *Scheduler) SyncByName(ctx context.Context, name string) (*SyncResult, error) {
	repo, ok := s.cfg.Repo(name)
	if !ok {
		return nil, errors.NewRepoNotFoundError(name)
	}

	if err := s.registry.BeginSync(name); err != nil {
		return nil, err
	}
	result, err := s.engine.Sync(ctx, repo)
	s.registry.CompleteSync(name, result, err)
	return result, err
}

// SyncAll fans out one sync per configured repository and reports the
// aggregate outcome in config order. One repository's failure never blocks
// or cancels the others.
func (s *Scheduler) SyncAll(ctx context.Context) []RepoResult {
	repos := s.cfg.Repos
	results := make([]RepoResult, len(repos))

	sem := make(chan struct{}, s.cfg.Sync.MaxConcurrentSyncs)
	var wg sync.WaitGroup
	for i, repo := range repos {
		wg.Add(1)
		go func(i int, repo config.Repo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := s.SyncByName(ctx, repo.Name)
			results[i] = RepoResult{Name: repo.Name, Result: result, Err: err}
		}(i, repo)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	s.logger.WithFields(logrus.Fields{
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	}).Info("Sync all completed")
	return results
}

// Start runs periodic SyncAll rounds until ctx is done. An interval of zero
// or less disables periodic syncing and returns immediately.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.logger.WithField("interval", interval).Info("Starting periodic sync")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Periodic sync stopped")
			return
		case <-ticker.C:
			s.SyncAll(ctx)
		}
	}
}
