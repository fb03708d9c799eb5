package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadRequiresCredentials(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv(EnvGroqAPIKey, "")
	t.Setenv(EnvTavilyAPIKey, "tvly-key")
	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvGroqAPIKey)

	t.Setenv(EnvGroqAPIKey, "gsk-key")
	t.Setenv(EnvTavilyAPIKey, "")
	_, _, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTavilyAPIKey)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvGroqAPIKey, "gsk-key")
	t.Setenv(EnvTavilyAPIKey, "tvly-key")

	cfg, sysCfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gsk-key", cfg.GroqAPIKey)
	assert.Equal(t, "tvly-key", cfg.TavilyAPIKey)
	assert.Empty(t, cfg.SystemPrompt)
	assert.Equal(t, DefaultSystemConfig(), sysCfg)
}

func TestLoadReadsConfigJSON(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"system_prompt": "custom persona",
		"channels": {"web": {"port": 9000}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644))

	chdir(t, dir)
	t.Setenv(EnvGroqAPIKey, "gsk-key")
	t.Setenv(EnvTavilyAPIKey, "tvly-key")

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom persona", cfg.SystemPrompt)
	require.Contains(t, cfg.Channels, "web")
}

func TestLoadRejectsMalformedConfigJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644))

	chdir(t, dir)
	t.Setenv(EnvGroqAPIKey, "gsk-key")
	t.Setenv(EnvTavilyAPIKey, "tvly-key")

	_, _, err := Load()
	require.Error(t, err)
}

func TestLoadSystemConfigFallsBackToDefaults(t *testing.T) {
	sysCfg := LoadSystemConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, DefaultSystemConfig(), sysCfg)
}

func TestLoadSystemConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "system.json")
	content := `{"max_tool_steps": 5, "temperature": 0.2}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	sysCfg := LoadSystemConfig(path)
	assert.Equal(t, 5, sysCfg.MaxToolSteps)
	assert.Equal(t, 0.2, sysCfg.Temperature)
	// Unspecified fields keep their defaults.
	assert.Equal(t, 120000, sysCfg.RunTimeoutMs)
	assert.True(t, sysCfg.EnableTools)
}

func TestDefaultSystemConfigCeilings(t *testing.T) {
	sysCfg := DefaultSystemConfig()
	assert.Equal(t, 10, sysCfg.MaxToolSteps)
	assert.Equal(t, 120000, sysCfg.RunTimeoutMs)
	assert.Equal(t, 60000, sysCfg.LLMTimeoutMs)
	assert.Equal(t, 2, sysCfg.MaxRetries)
	assert.Equal(t, 20, sysCfg.HistoryMaxTurns)
}
