package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.ReaperInterval)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.LoginRateWindow)
	assert.Equal(t, 80, cfg.APIRateLimit)
	assert.Equal(t, time.Minute, cfg.APIRateWindow)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CLUBPOINT_SESSION_TTL", "1h")
	t.Setenv("CLUBPOINT_LOGIN_RATE_LIMIT", "3")
	t.Setenv("CLUBPOINT_TRUSTED_PROXIES", "10.0.0.0/8,192.168.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.LoginRateLimit)
	assert.Equal(t, "10.0.0.0/8,192.168.0.1", cfg.TrustedProxies)
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("CLUBPOINT_SESSION_TTL", "-1h")

	_, err := Load()
	assert.Error(t, err)
}
