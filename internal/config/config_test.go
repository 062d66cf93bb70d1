package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	assert.NoError(t, cfg.Validate())
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
api:
  port: 9090
autosave:
  save_debounce: 1s
  version_debounce: 20s
  min_version_length: 25
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, time.Second, cfg.Autosave.SaveDebounce)
	assert.Equal(t, 20*time.Second, cfg.Autosave.VersionDebounce)
	assert.Equal(t, 25, cfg.Autosave.MinVersionLength)
	// Defaults survive where the file is silent.
	assert.Equal(t, "atrium", cfg.Database.Name)
}

func TestLoadReadsSecretsFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ATRIUM_JWT_SECRET", "jwt-secret")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Secrets.OpenAIAPIKey)
	assert.Equal(t, "jwt-secret", cfg.Secrets.JWTSecret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")

	assert.Error(t, err)
}

func TestValidateAutosaveOrdering(t *testing.T) {
	cfg := Default()
	cfg.Autosave.VersionDebounce = cfg.Autosave.SaveDebounce

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "version_debounce")
}

func TestValidateAuthRequiresSecret(t *testing.T) {
	cfg := Default()
	cfg.API.EnableAuth = true
	cfg.Secrets.JWTSecret = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ATRIUM_JWT_SECRET")

	cfg.Secrets.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateEventsBrokers(t *testing.T) {
	cfg := Default()
	cfg.Events.Enabled = true
	cfg.Events.Brokers = []string{"kafka-without-port"}

	assert.Error(t, cfg.Validate())

	cfg.Events.Brokers = []string{"localhost:9092"}
	assert.NoError(t, cfg.Validate())
}
