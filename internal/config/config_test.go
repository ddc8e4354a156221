package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FITTRACK_API_URL", "")
	t.Setenv("FITTRACK_HTTP_TIMEOUT", "")
	t.Setenv("FITTRACK_RATE_LIMIT", "")
	t.Setenv("FITTRACK_SESSION_BACKEND", "")
	t.Setenv("FITTRACK_SESSION_FILE", "")
	t.Setenv("FITTRACK_LOG_FILE", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8000/api/auth", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10.0, cfg.RateLimit)
	assert.Equal(t, SessionBackendFile, cfg.SessionBackend)
	assert.Equal(t, "session.json", filepath.Base(cfg.SessionFile))
	assert.Equal(t, "fittrack.log", filepath.Base(cfg.LogFile))
	assert.Equal(t, filepath.Dir(cfg.SessionFile), filepath.Dir(cfg.LogFile))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FITTRACK_API_URL", "https://gym.example.com/api/auth/")
	t.Setenv("FITTRACK_HTTP_TIMEOUT", "5s")
	t.Setenv("FITTRACK_RATE_LIMIT", "2.5")
	t.Setenv("FITTRACK_SESSION_BACKEND", "REDIS")
	t.Setenv("FITTRACK_LOG_FILE", "stderr")

	cfg := Load()

	assert.Equal(t, "https://gym.example.com/api/auth", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, "stderr", cfg.LogFile)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("FITTRACK_HTTP_TIMEOUT", "soon")
	t.Setenv("FITTRACK_RATE_LIMIT", "-1")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10.0, cfg.RateLimit)
}
