package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 500, cfg.Crawl.TargetCount)
	assert.Equal(t, 300, cfg.Crawl.RoundCap)
	assert.Equal(t, 1200*time.Millisecond, cfg.Crawl.ScrollPauseMin)
	assert.Equal(t, 2200*time.Millisecond, cfg.Crawl.ScrollPauseMax)
	assert.Equal(t, 180*time.Second, cfg.Crawl.LoginTimeout)
	assert.Equal(t, 60*time.Second, cfg.Crawl.ResultsTimeout)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Output.CSV)
	assert.Equal(t, "auth_token", cfg.Session.AuthMarker)
	assert.NoError(t, cfg.Validate())
}

func TestQueryAndURLs(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "paro nacional ecuador lang:es", cfg.QueryString())
	assert.Equal(t, "x.com", cfg.TargetDomain())
	assert.Equal(t, "https://x.com/login", cfg.LoginURL())

	searchURL := cfg.SearchURL()
	assert.True(t, strings.HasPrefix(searchURL, "https://x.com/search?"))
	assert.Contains(t, searchURL, "q=paro+nacional+ecuador+lang%3Aes")
	assert.Contains(t, searchURL, "src=typed_query")
	assert.Contains(t, searchURL, "f=live")

	cfg.Query.Language = ""
	assert.Equal(t, "paro nacional ecuador", cfg.QueryString())

	cfg.Target.BaseURL = "https://www.example.org/"
	assert.Equal(t, "example.org", cfg.TargetDomain())
	assert.Equal(t, "https://www.example.org/login", cfg.LoginURL())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FEEDHARVEST_KEYWORDS", "huelga  transporte")
	t.Setenv("FEEDHARVEST_LANGUAGE", "en")
	t.Setenv("FEEDHARVEST_TARGET_COUNT", "25")
	t.Setenv("FEEDHARVEST_ROUND_CAP", "40")
	t.Setenv("FEEDHARVEST_HEADLESS", "false")
	t.Setenv("FEEDHARVEST_CSV", "false")
	t.Setenv("FEEDHARVEST_SESSION_BACKEND", "keyring")
	t.Setenv("FEEDHARVEST_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, []string{"huelga", "transporte"}, cfg.Query.Keywords)
	assert.Equal(t, "en", cfg.Query.Language)
	assert.Equal(t, 25, cfg.Crawl.TargetCount)
	assert.Equal(t, 40, cfg.Crawl.RoundCap)
	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Output.CSV)
	assert.Equal(t, "keyring", cfg.Session.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("FEEDHARVEST_TARGET_COUNT", "many")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
query:
  keywords: [paro, quito]
  language: es
crawl:
  target_count: 50
  round_cap: 20
  scroll_pause_min: 500ms
  scroll_pause_max: 1s
output:
  csv: false
  sqlite: posts.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, []string{"paro", "quito"}, cfg.Query.Keywords)
	assert.Equal(t, 50, cfg.Crawl.TargetCount)
	assert.Equal(t, 20, cfg.Crawl.RoundCap)
	assert.Equal(t, 500*time.Millisecond, cfg.Crawl.ScrollPauseMin)
	assert.Equal(t, time.Second, cfg.Crawl.ScrollPauseMax)
	assert.False(t, cfg.Output.CSV)
	assert.Equal(t, "posts.db", cfg.Output.SQLite)

	// untouched sections keep their defaults
	assert.Equal(t, 180*time.Second, cfg.Crawl.LoginTimeout)
	assert.Equal(t, "file", cfg.Session.Backend)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl: [unclosed"), 0600))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.Target.BaseURL = "x.com" },
			wantErr: "absolute URL",
		},
		{
			name:    "no keywords",
			mutate:  func(c *Config) { c.Query.Keywords = nil },
			wantErr: "keyword",
		},
		{
			name:    "zero target",
			mutate:  func(c *Config) { c.Crawl.TargetCount = 0 },
			wantErr: "target count",
		},
		{
			name:    "zero round cap",
			mutate:  func(c *Config) { c.Crawl.RoundCap = 0 },
			wantErr: "round cap",
		},
		{
			name: "inverted pause bounds",
			mutate: func(c *Config) {
				c.Crawl.ScrollPauseMin = 3 * time.Second
				c.Crawl.ScrollPauseMax = time.Second
			},
			wantErr: "scroll pause",
		},
		{
			name:    "unknown session backend",
			mutate:  func(c *Config) { c.Session.Backend = "redis" },
			wantErr: "session backend",
		},
		{
			name: "mixed case keyring backend without file",
			mutate: func(c *Config) {
				c.Session.Backend = "Keyring"
				c.Session.File = ""
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"keywords":     []string{"elecciones"},
		"language":     "es",
		"target-count": 10,
		"round-cap":    5,
		"headless":     false,
		"csv":          false,
		"output":       "/tmp/harvest",
		"sqlite":       "/tmp/harvest/posts.db",
		"session-file": "/tmp/cookies.json",
	})

	assert.Equal(t, []string{"elecciones"}, cfg.Query.Keywords)
	assert.Equal(t, 10, cfg.Crawl.TargetCount)
	assert.Equal(t, 5, cfg.Crawl.RoundCap)
	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Output.CSV)
	assert.Equal(t, "/tmp/harvest", cfg.Output.Directory)
	assert.Equal(t, "/tmp/harvest/posts.db", cfg.Output.SQLite)
	assert.Equal(t, "/tmp/cookies.json", cfg.Session.File)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Crawl.TargetCount = 42
	cfg.Crawl.ScrollPauseMin = 750 * time.Millisecond
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 42, loaded.Crawl.TargetCount)
	assert.Equal(t, 750*time.Millisecond, loaded.Crawl.ScrollPauseMin)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl:\n  target_count: 50\n  round_cap: 7\n"), 0600))
	t.Setenv("FEEDHARVEST_TARGET_COUNT", "60")

	cfg, err := Load(path, map[string]interface{}{"target-count": 70})
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.Crawl.TargetCount)
	assert.Equal(t, 7, cfg.Crawl.RoundCap)

	_, err = Load(path, map[string]interface{}{"log-level": "loud"})
	assert.Error(t, err)
}
