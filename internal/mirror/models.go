package mirror

import (
	"time"
)

// Sync status values recorded in the registry
const (
	StatusUnknown = ""
	StatusSyncing = "syncing"
	StatusSuccess = "success"
	StatusError   = "error"
)

// State is the per-repository runtime record. It is owned by the Registry and
// mutated only through BeginSync/CompleteSync.
type State struct {
	Name       string    `json:"name"`
	LocalPath  string    `json:"local_path"`
	Status     string    `json:"status"`
	IsSyncing  bool      `json:"is_syncing"`
	LastSyncAt time.Time `json:"last_sync_at,omitempty"`
	LastError  string    `json:"last_error,omitempty"`

	// SyncDuration is how long the last successful sync took
	SyncDuration time.Duration `json:"sync_duration,omitempty"`
}

// SyncResult reports the outcome of a single successful sync
type SyncResult struct {
	Name     string        `json:"name"`
	Head     string        `json:"head"`
	Cloned   bool          `json:"cloned"`
	Changed  bool          `json:"changed"`
	Duration time.Duration `json:"duration"`
}

// RepoResult is one repository's entry in a sync-all aggregate
type RepoResult struct {
	Name   string      `json:"name"`
	Result *SyncResult `json:"result,omitempty"`
	Err    error       `json:"-"`
}
