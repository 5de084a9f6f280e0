package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.current-rms.com/api/v1", cfg.CurrentRMS.BaseURL)
	assert.InDelta(t, 5, cfg.CurrentRMS.RatePerSec, 1e-9)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "riskdash.db", cfg.Store.Path)
	assert.Equal(t, 50, cfg.Fetch.PerPage)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.CurrentRMS.Configured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RISKDASH_CURRENTRMS_SUBDOMAIN", "acme-av")
	t.Setenv("RISKDASH_CURRENTRMS_TOKEN", "tok-123")
	t.Setenv("RISKDASH_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "acme-av", cfg.CurrentRMS.Subdomain)
	assert.Equal(t, "tok-123", cfg.CurrentRMS.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.CurrentRMS.Configured())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: 9090\nfetch:\n  per_page: 25\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Fetch.PerPage)
}

func TestWriteSample_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteSample(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.Equal(t, "your-subdomain", cfg.CurrentRMS.Subdomain)
	assert.Equal(t, 50, cfg.Fetch.PerPage)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouty", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
