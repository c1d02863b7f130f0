package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
language: en
provider: basic
providers:
  basic:
    models:
      default: llama3.1
      available: [llama3.1]
      system_prompt: "be nice"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Telegram.Token)
	assert.Equal(t, "open", cfg.Telegram.AccessMode)
	assert.Equal(t, 5, cfg.RateLimit.UserMaxRequests)
	assert.Equal(t, 100, cfg.RateLimit.GlobalMaxRequests)
	assert.Equal(t, "sqlite", cfg.UserDB.Driver)
	assert.Equal(t, 1000, cfg.UserDB.MaxCacheSize)
	assert.Equal(t, 50, cfg.MaxMessageHistory)
	assert.Equal(t, "8080", cfg.HTTP.Port)

	p := cfg.Active()
	assert.Equal(t, "http://localhost:11434", p.Ollama.Host)
	assert.Equal(t, 0.7, p.Models.Temperature)
	assert.Equal(t, 1024, p.Models.MaxTokens)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load(writeConfig(t, minimalYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")

	body := `
provider: nope
providers:
  basic:
    models:
      default: llama3.1
`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestLoadRejectsBadAccessMode(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")

	body := minimalYAML + `
telegram:
  access_mode: vip
`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_mode")
}

func TestLoadPostgresNeedsDSN(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "")

	body := minimalYAML + `
user_data_db:
  driver: postgres
`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestWindowHelpers(t *testing.T) {
	c := RateLimitConfig{UserTimeFrameSeconds: 30, GlobalTimeFrameSeconds: 90}
	assert.Equal(t, "30s", c.UserWindow().String())
	assert.Equal(t, "1m30s", c.GlobalWindow().String())
}
