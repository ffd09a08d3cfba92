// Package config loads runlens configuration from the user config
// directory and watches it for live edits. Every field is optional; a
// missing file is the same as an empty one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the configuration stored in config.toml.
type Config struct {
	Parser ParserConfig `toml:"parser"`
	GitHub GitHubConfig `toml:"github"`
	Cache  CacheConfig  `toml:"cache"`
	UI     UIConfig     `toml:"ui"`
}

// ParserConfig contains log parsing configuration.
type ParserConfig struct {
	// SlowRows caps the rows shown in the slowest-tests section.
	// Defaults to 10 when not specified.
	SlowRows *int `toml:"slow_rows"`
}

// MaxSlowRows returns the slowest-tests row cap, defaulting to 10 when
// unset or non-positive.
func (p *ParserConfig) MaxSlowRows() int {
	if p.SlowRows == nil || *p.SlowRows <= 0 {
		return 10
	}
	return *p.SlowRows
}

// GitHubConfig contains gh CLI query configuration.
type GitHubConfig struct {
	// RunLimit is the number of runs listed per workflow.
	// Defaults to 20 when not specified.
	RunLimit *int `toml:"run_limit"`

	// Status filters the run listing, e.g. "success" or "failure".
	// Empty lists runs in every state.
	Status string `toml:"status"`

	// CacheTTL is how long workflow and run listings are reused before
	// being fetched again, as a Go duration string. Defaults to "30s".
	CacheTTL string `toml:"cache_ttl"`

	// Prefetch is the number of job logs downloaded concurrently in the
	// background after a run is opened. Defaults to 3; 0 disables it.
	Prefetch *int `toml:"prefetch"`
}

// GetRunLimit returns the run listing limit, defaulting to 20.
func (g *GitHubConfig) GetRunLimit() int {
	if g.RunLimit == nil || *g.RunLimit <= 0 {
		return 20
	}
	return *g.RunLimit
}

// GetStatus returns the run status filter, empty for all states.
func (g *GitHubConfig) GetStatus() string {
	return strings.TrimSpace(g.Status)
}

// GetCacheTTL returns the listing cache lifetime.
// Defaults to 30 seconds when unset or unparsable.
func (g *GitHubConfig) GetCacheTTL() time.Duration {
	if g.CacheTTL == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(g.CacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetPrefetch returns the background log download concurrency.
// Defaults to 3; explicit non-positive values disable prefetching.
func (g *GitHubConfig) GetPrefetch() int {
	if g.Prefetch == nil {
		return 3
	}
	if *g.Prefetch <= 0 {
		return 0
	}
	return *g.Prefetch
}

// CacheConfig contains on-disk log cache configuration.
type CacheConfig struct {
	// MaxLogs is the number of job logs kept on disk before the oldest
	// are pruned. Defaults to 200; explicit non-positive values disable
	// pruning.
	MaxLogs *int `toml:"max_logs"`
}

// GetMaxLogs returns the log cache size limit, 0 meaning unlimited.
func (c *CacheConfig) GetMaxLogs() int {
	if c.MaxLogs == nil {
		return 200
	}
	if *c.MaxLogs <= 0 {
		return 0
	}
	return *c.MaxLogs
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Mouse enables mouse support. Defaults to true when not specified.
	Mouse *bool `toml:"mouse"`
}

// MouseEnabled returns whether the TUI should capture mouse events.
func (u *UIConfig) MouseEnabled() bool {
	if u.Mouse == nil {
		return true
	}
	return *u.Mouse
}

// Load reads and parses the config file at path. A missing file is not an
// error: it yields a config whose getters all return their defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns the standard config file location,
// $XDG_CONFIG_HOME/runlens/config.toml or ~/.config/runlens/config.toml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "runlens", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "runlens", "config.toml")
}

// StateDir returns the directory holding the debug log and the log cache,
// $XDG_STATE_HOME/runlens or ~/.local/state/runlens.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "runlens")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "runlens")
}
