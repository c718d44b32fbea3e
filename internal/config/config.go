package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ashhhleyyy/gitit/internal/errors"
)

// Repo describes a single mirrored repository. Name is the TOML table key and
// doubles as the mirror directory name, so it has to be path-safe.
type Repo struct {
	Name  string `toml:"-" json:"name"`
	URL   string `toml:"url" json:"url"`
	Title string `toml:"title" json:"title"`
	Head  string `toml:"head" json:"head"`
}

// Server holds the HTTP listen configuration
type Server struct {
	Address string `toml:"address"`
}

// Sync holds synchronization configuration
type Sync struct {
	IntervalMinutes    int    `toml:"interval_minutes"`
	MaxConcurrentSyncs int    `toml:"max_concurrent_syncs"`
	TimeoutMinutes     int    `toml:"timeout_minutes"`
	MirrorDir          string `toml:"mirror_dir"`
}

// Interval returns the periodic sync cadence; zero disables periodic syncs.
func (s Sync) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// Timeout returns the per-repository sync timeout
func (s Sync) Timeout() time.Duration {
	return time.Duration(s.TimeoutMinutes) * time.Minute
}

// SkippedRepo records a config entry that failed validation and was dropped
type SkippedRepo struct {
	Name   string
	Reason error
}

// Config is the full validated configuration
type Config struct {
	Server  Server
	Sync    Sync
	Repos   []Repo
	Skipped []SkippedRepo
}

type fileConfig struct {
	Server Server          `toml:"server"`
	Sync   Sync            `toml:"sync"`
	Repos  map[string]Repo `toml:"repos"`
}

const (
	defaultAddress        = ":8080"
	defaultMirrorDir      = "repos"
	defaultHead           = "main"
	defaultMaxConcurrent  = 3
	defaultTimeoutMinutes = 10
)

// repoNamePattern restricts repository names to path-safe slugs. Anything
// else could escape the mirror directory once joined into a filesystem path.
var repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Load reads the TOML config file. The path comes from GITIT_CONFIG, falling
// back to gitit.toml in the working directory. Invalid repository entries are
// dropped and reported via Config.Skipped; they never abort loading.
func Load() (*Config, error) {
	path := getEnv("GITIT_CONFIG", "gitit.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	return Parse(data)
}

// Parse decodes and validates raw TOML configuration
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, errors.NewConfigError("failed to parse config", err)
	}

	cfg := &Config{
		Server: fc.Server,
		Sync:   fc.Sync,
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = getEnv("GITIT_ADDRESS", defaultAddress)
	}
	if cfg.Sync.MirrorDir == "" {
		cfg.Sync.MirrorDir = getEnv("GITIT_MIRROR_DIR", defaultMirrorDir)
	}
	if cfg.Sync.MaxConcurrentSyncs <= 0 {
		cfg.Sync.MaxConcurrentSyncs = getEnvInt("GITIT_MAX_CONCURRENT_SYNCS", defaultMaxConcurrent)
	}
	if cfg.Sync.TimeoutMinutes <= 0 {
		cfg.Sync.TimeoutMinutes = defaultTimeoutMinutes
	}

	// TOML tables have no inherent order, so config order is name order.
	names := make([]string, 0, len(fc.Repos))
	for name := range fc.Repos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		repo := fc.Repos[name]
		repo.Name = name
		if repo.Head == "" {
			repo.Head = defaultHead
		}
		if err := validateRepo(repo); err != nil {
			cfg.Skipped = append(cfg.Skipped, SkippedRepo{Name: name, Reason: err})
			continue
		}
		cfg.Repos = append(cfg.Repos, repo)
	}

	return cfg, nil
}

// MirrorPath returns the on-disk path of a repository's bare mirror
func (c *Config) MirrorPath(name string) string {
	return filepath.Join(c.Sync.MirrorDir, name+".git")
}

// Repo looks up a configured repository by name
func (c *Config) Repo(name string) (Repo, bool) {
	for _, repo := range c.Repos {
		if repo.Name == name {
			return repo, true
		}
	}
	return Repo{}, false
}

func validateRepo(repo Repo) error {
	if !repoNamePattern.MatchString(repo.Name) {
		return errors.NewConfigError(fmt.Sprintf("invalid repository name: %q", repo.Name), nil)
	}
	if repo.URL == "" {
		return errors.NewConfigError(fmt.Sprintf("repository %s has no url", repo.Name), nil)
	}
	if repo.Title == "" {
		return errors.NewConfigError(fmt.Sprintf("repository %s has no title", repo.Name), nil)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
