package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mailsift.db", cfg.DBPath)
	assert.Equal(t, "rules.json", cfg.RulesFile)
	assert.Equal(t, 4, cfg.RequestsPerSec)
	assert.Equal(t, time.Second, cfg.ActionInterval)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailsift.yaml")
	content := `
db_path: /tmp/custom.db
rules_file: /tmp/rules.json
requests_per_sec: 2
action_interval: 1500ms
workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, "/tmp/rules.json", cfg.RulesFile)
	assert.Equal(t, 2, cfg.RequestsPerSec)
	assert.Equal(t, 1500*time.Millisecond, cfg.ActionInterval)
	assert.Equal(t, 8, cfg.Workers)
	// untouched keys keep their defaults
	assert.Equal(t, 100, cfg.PageSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailsift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o600))

	t.Setenv("MAILSIFT_WORKERS", "16")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty-db-path", func(c *Config) { c.DBPath = "" }},
		{"empty-rules-file", func(c *Config) { c.RulesFile = "" }},
		{"zero-rps", func(c *Config) { c.RequestsPerSec = 0 }},
		{"zero-interval", func(c *Config) { c.ActionInterval = 0 }},
		{"page-size-too-big", func(c *Config) { c.PageSize = 501 }},
		{"negative-max-fetch", func(c *Config) { c.MaxFetch = -1 }},
		{"zero-workers", func(c *Config) { c.Workers = 0 }},
		{"negative-retries", func(c *Config) { c.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
