package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DATABASE_URL", "LINKEDIN_COOKIES", "LINKEDIN_COOKIES_PATH", "TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Canada", cfg.LinkedIn.Location)
	assert.Equal(t, 0, cfg.LinkedIn.LimitJobs)
	assert.Equal(t, 25, cfg.LinkedIn.PageSize)
	assert.Equal(t, 2*time.Second, cfg.LinkedIn.DismissDelay)
	assert.Equal(t, 3*time.Second, cfg.LinkedIn.PageDelay)
	assert.Equal(t, ".cookies/cookies-linkedin.json", cfg.LinkedIn.CookiesPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
database_url: postgres://yaml
telegram_chat_id: 1
linkedin:
  keywords: golang
  location: Toronto
  limit_jobs: 50
  dismiss_keywords: [Senior, Lead]
  dismiss_delay: 500ms
log_format: json
`)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.Equal(t, "Toronto", cfg.LinkedIn.Location)
	assert.Equal(t, 50, cfg.LinkedIn.LimitJobs)
	assert.Equal(t, []string{"Senior", "Lead"}, cfg.LinkedIn.DismissKeywords)
	assert.Equal(t, 500*time.Millisecond, cfg.LinkedIn.DismissDelay)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "linkedin: [unclosed"},
		{name: "bad chat id", env: map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
		{name: "negative limit", yaml: "linkedin:\n  limit_jobs: -1\n"},
		{name: "unknown log format", env: map[string]string{"LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestRequireDatabase(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireDatabase()
	assert.True(t, errors.Is(err, ErrMissingConfig))
	assert.ErrorContains(t, err, "DATABASE_URL")

	cfg.DatabaseURL = "postgres://x"
	assert.NoError(t, cfg.RequireDatabase())
}

func TestRequireLinkedIn(t *testing.T) {
	cfg := &Config{LinkedIn: LinkedInConfig{CookiesPath: filepath.Join(t.TempDir(), "none.json")}}
	assert.ErrorIs(t, cfg.RequireLinkedIn(), ErrMissingConfig)

	cfg.LinkedIn.Cookies = "li_at=abc"
	assert.NoError(t, cfg.RequireLinkedIn())

	file := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o600))
	cfg = &Config{LinkedIn: LinkedInConfig{CookiesPath: file}}
	assert.NoError(t, cfg.RequireLinkedIn())
}

func TestLoad_EveryEnvTagOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
database_url: postgres://yaml
log_level: debug
linkedin:
  cookies_path: yaml.json
`)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_ADDR", ":9100")
	t.Setenv("LINKEDIN_COOKIES", "li_at=x")
	t.Setenv("LINKEDIN_COOKIES_PATH", "env.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "token", cfg.TelegramToken)
	assert.Equal(t, int64(42), cfg.TelegramChatID)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "li_at=x", cfg.LinkedIn.Cookies)
	assert.Equal(t, "env.json", cfg.LinkedIn.CookiesPath)
}
