package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvTimeout, EnvOutput} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, OutputText, cfg.Output)
	assert.Equal(t, filepath.Join(dir, "token.json"), cfg.TokenPath())
}

func TestLoad_ConfigFileWithComments(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	content := `{
	// staging server
	"api_url": "https://sprint.example.com/",
	"timeout": "3s",
	"output": "yaml", // trailing comma next
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://sprint.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, OutputYAML, cfg.Output)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(`{"api_url": "http://file"}`), 0600))

	t.Setenv(EnvAPIURL, "http://env")
	t.Setenv(EnvTimeout, "250ms")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://env", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(`{"api_url": `), 0600))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSONC")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "soon")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestSetOutput(t *testing.T) {
	cfg, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.SetOutput(OutputJSON))
	assert.Equal(t, OutputJSON, cfg.Output)

	assert.Error(t, cfg.SetOutput("xml"))
	assert.Equal(t, OutputJSON, cfg.Output, "failed SetOutput must not change the format")
}

func TestSetAPIURL(t *testing.T) {
	cfg, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.SetAPIURL("https://sprint.example.com/api/"))
	assert.Equal(t, "https://sprint.example.com/api", cfg.APIURL)

	for _, raw := range []string{"ftp://x", "localhost:8000", "http://", "://bad"} {
		assert.Error(t, cfg.SetAPIURL(raw), raw)
	}
	assert.Equal(t, "https://sprint.example.com/api", cfg.APIURL, "failed SetAPIURL must not change the url")
}

func TestLoad_InvalidAPIURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "ftp://x")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme must be http or https")
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), DefaultConfigDir())
}
