package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Parser.MaxSlowRows())
	assert.Equal(t, 20, cfg.GitHub.GetRunLimit())
	assert.Equal(t, "", cfg.GitHub.GetStatus())
	assert.Equal(t, 30*time.Second, cfg.GitHub.GetCacheTTL())
	assert.Equal(t, 3, cfg.GitHub.GetPrefetch())
	assert.Equal(t, 200, cfg.Cache.GetMaxLogs())
	assert.True(t, cfg.UI.MouseEnabled())
}

func TestLoad_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[parser]
slow_rows = 25

[github]
run_limit = 50
status = "failure"
cache_ttl = "2m"
prefetch = 5

[cache]
max_logs = 500

[ui]
mouse = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Parser.MaxSlowRows())
	assert.Equal(t, 50, cfg.GitHub.GetRunLimit())
	assert.Equal(t, "failure", cfg.GitHub.GetStatus())
	assert.Equal(t, 2*time.Minute, cfg.GitHub.GetCacheTTL())
	assert.Equal(t, 5, cfg.GitHub.GetPrefetch())
	assert.Equal(t, 500, cfg.Cache.GetMaxLogs())
	assert.False(t, cfg.UI.MouseEnabled())
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[parser\nslow_rows = "), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetters_InvalidValuesFallBack(t *testing.T) {
	negative := -4
	cfg := Config{
		Parser: ParserConfig{SlowRows: &negative},
		GitHub: GitHubConfig{RunLimit: &negative, CacheTTL: "soonish"},
	}

	assert.Equal(t, 10, cfg.Parser.MaxSlowRows())
	assert.Equal(t, 20, cfg.GitHub.GetRunLimit())
	assert.Equal(t, 30*time.Second, cfg.GitHub.GetCacheTTL())
}

func TestGetters_ExplicitZeroDisables(t *testing.T) {
	zero := 0
	cfg := Config{
		GitHub: GitHubConfig{Prefetch: &zero},
		Cache:  CacheConfig{MaxLogs: &zero},
	}

	assert.Equal(t, 0, cfg.GitHub.GetPrefetch())
	assert.Equal(t, 0, cfg.Cache.GetMaxLogs())
}

func TestGetStatus_Trimmed(t *testing.T) {
	cfg := Config{GitHub: GitHubConfig{Status: "  success  "}}
	assert.Equal(t, "success", cfg.GitHub.GetStatus())
}

func TestDefaultPath_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	assert.Equal(t, filepath.Join("/tmp/xdg-config", "runlens", "config.toml"), DefaultPath())
}

func TestStateDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	assert.Equal(t, filepath.Join("/tmp/xdg-state", "runlens"), StateDir())
}
