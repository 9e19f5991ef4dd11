package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvAssetsHost, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  url: https://survey.example.com/api
server:
  base_path: /survey
dashboard:
  request_timeout: 3s
  view_ttl: 5m
  team:
    - name: Dana
      role: Research
charts:
  theme: macarons
log:
  level: debug
  format: console
`), 0o600))
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvAssetsHost, "https://cdn.example.com/echarts")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://survey.example.com/api", cfg.API.URL)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/survey", cfg.Server.BasePath)
	assert.Equal(t, 3*time.Second, cfg.Dashboard.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.ViewTTL)
	assert.Equal(t, 750*time.Millisecond, cfg.Dashboard.FirstPaintWait)
	require.Len(t, cfg.Dashboard.Team, 1)
	assert.Equal(t, "Dana", cfg.Dashboard.Team[0].Name)
	assert.Equal(t, "macarons", cfg.Charts.Theme)
	assert.Equal(t, "https://cdn.example.com/echarts", cfg.Charts.AssetsHost)

	logger, err := cfg.Log.Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAddr, "")
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("api:\n  endpoint: nope\n"), 0o600))
	_, err := Load(unknown)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api:\n  url: \"\"\nserver:\n  base_path: wbt\nlog:\n  format: xml\n"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.url")
	assert.Contains(t, err.Error(), "base_path")
	assert.Contains(t, err.Error(), "log.format")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMockModeDoesNotNeedAPIURL(t *testing.T) {
	cfg := Defaults()
	cfg.API.URL = ""
	cfg.API.Mock = true
	assert.NoError(t, cfg.Validate())
}
