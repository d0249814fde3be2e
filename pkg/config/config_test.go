package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig() {
	K = koanf.New(Delimiter)
	Config = nil
}

func TestInit_Defaults(t *testing.T) {
	resetConfig()

	// a missing config file is fine, defaults apply
	require.NoError(t, Init(filepath.Join(t.TempDir(), "config.yaml")))

	assert.Equal(t, "MD5", Config.DefaultAlgorithm)
	assert.Equal(t, 0, Config.Workers)
	assert.Empty(t, Config.Filters.Ignore)
	assert.Empty(t, Config.Filters.ExcludePaths)
	assert.False(t, Config.Notifications.SkipEmptyRun)
	assert.Empty(t, Config.Notifications.Service.Discord)
}

func TestInit_File(t *testing.T) {
	resetConfig()

	configFile := filepath.Join(t.TempDir(), "config.yaml")

	content := `default_algorithm: SHA256
workers: 4
filters:
  ignore:
    - 'Size == 0'
  exclude_paths:
    - '*.tmp'
notifications:
  skip_empty_run: true
  service:
    discord: https://discord.com/api/webhooks/123/abc
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	require.NoError(t, Init(configFile))

	assert.Equal(t, "SHA256", Config.DefaultAlgorithm)
	assert.Equal(t, 4, Config.Workers)
	assert.Equal(t, []string{"Size == 0"}, Config.Filters.Ignore)
	assert.Equal(t, []string{"*.tmp"}, Config.Filters.ExcludePaths)
	assert.True(t, Config.Notifications.SkipEmptyRun)
	assert.Equal(t, "https://discord.com/api/webhooks/123/abc", Config.Notifications.Service.Discord)
}

func TestInit_NegativeWorkers(t *testing.T) {
	resetConfig()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("workers: -1\n"), 0644))

	assert.Error(t, Init(configFile))
}

func TestGetDefaultConfigDirectory(t *testing.T) {
	dir := GetDefaultConfigDirectory("dupefinder", "definitely-not-present.yaml")
	assert.NotEmpty(t, dir)
}
