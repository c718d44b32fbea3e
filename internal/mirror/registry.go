package mirror

import (
	"sync"
	"time"

	"github.com/ashhhleyyy/gitit/internal/config"
	"github.com/ashhhleyyy/gitit/internal/errors"
)

// Registry is the process-wide map from repository name to mirror state. It
// is the single enforcement point for the at-most-one-sync-per-repository
// invariant: BeginSync atomically claims the per-name slot under one lock.
type Registry struct {
	mu     sync.Mutex
	order  []string
	states map[string]*State
}

// NewRegistry builds a registry from the validated configuration, one state
// per repository in config order.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		states: make(map[string]*State, len(cfg.Repos)),
	}
	for _, repo := range cfg.Repos {
		r.order = append(r.order, repo.Name)
		r.states[repo.Name] = &State{
			Name:      repo.Name,
			LocalPath: cfg.MirrorPath(repo.Name),
		}
	}
	return r
}

// Get returns a copy of the state for a repository
func (r *Registry) Get(name string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.states[name]
	if !exists {
		return State{}, errors.NewRepoNotFoundError(name)
	}
	return *state, nil
}

// List returns copies of all states in config order
func (r *Registry) List() []State {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make([]State, 0, len(r.order))
	for _, name := range r.order {
		states = append(states, *r.states[name])
	}
	return states
}

// BeginSync claims the sync slot for a repository. It fails with
// SyncInProgress if a sync for the same name is already running; a successful
// claim must be released with CompleteSync.
func (r *Registry) BeginSync(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.states[name]
	if !exists {
		return errors.NewRepoNotFoundError(name)
	}
	if state.IsSyncing {
		return errors.NewSyncInProgressError(name)
	}
	state.IsSyncing = true
	state.Status = StatusSyncing
	return nil
}

// CompleteSync releases the sync slot and records the outcome
func (r *Registry) CompleteSync(name string, result *SyncResult, syncErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.states[name]
	if !exists {
		return
	}
	state.IsSyncing = false
	state.LastSyncAt = time.Now()
	if syncErr != nil {
		state.Status = StatusError
		state.LastError = syncErr.Error()
		return
	}
	state.Status = StatusSuccess
	state.LastError = ""
	if result != nil {
		state.SyncDuration = result.Duration
	}
}
