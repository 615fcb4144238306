package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "*", cfg.App.CORSOrigin)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, "http://localhost:8080", cfg.Portal.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.Portal.RequestTimeout)
	assert.Equal(t, "warn", cfg.Portal.LogLevel)
	assert.Equal(t, "session.json", filepath.Base(cfg.Portal.SessionFile))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "9000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")
	t.Setenv("JWT_REFRESH_EXPIRY", "not-a-duration")
	t.Setenv("PORTAL_SESSION_FILE", "/tmp/portal/session.json")
	t.Setenv("PORTAL_REQUEST_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, "/tmp/portal/session.json", cfg.Portal.SessionFile)
	assert.Equal(t, 2*time.Second, cfg.Portal.RequestTimeout)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_NAME=healgenie\nJWT_SECRET=from-file\nAPP_CORS_ORIGIN=https://portal.example.com\n"), 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "healgenie", cfg.DB.Name)
	assert.Equal(t, "https://portal.example.com", cfg.App.CORSOrigin)
	assert.Equal(t, "from-env", cfg.JWT.Secret, "environment wins over .env")
}
