package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "account-service", cfg.App.Name)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	require.Equal(t, 365, cfg.Auth.SessionTTLDays)
	require.Equal(t, 365*24*time.Hour, cfg.Auth.SessionTTL())
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, 500, cfg.Auth.UserCacheSize)

	require.Equal(t, "memory", cfg.Codes.Backend)
	require.Equal(t, 10*time.Minute, cfg.Codes.TTL())
	require.Equal(t, time.Minute, cfg.Codes.CooldownBuffer())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_SESSION_TTL_DAYS", "30")
	t.Setenv("CODES_BACKEND", "redis")
	t.Setenv("CODES_TTL_MINUTES", "5")
	t.Setenv("CODES_COOLDOWN_BUFFER_SECONDS", "120")
	t.Setenv("AUTH_USER_CACHE_SIZE", "100")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	require.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL())
	require.Equal(t, "redis", cfg.Codes.Backend)
	require.Equal(t, 5*time.Minute, cfg.Codes.TTL())
	require.Equal(t, 2*time.Minute, cfg.Codes.CooldownBuffer())
	require.Equal(t, 100, cfg.Auth.UserCacheSize)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_SESSION_TTL_DAYS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 365, cfg.Auth.SessionTTLDays)
}

func TestNonPositiveDurationsFallBack(t *testing.T) {
	auth := AuthConfig{SessionTTLDays: 0}
	require.Equal(t, 365*24*time.Hour, auth.SessionTTL())

	codes := CodesConfig{}
	require.Equal(t, 10*time.Minute, codes.TTL())
	require.Equal(t, time.Minute, codes.CooldownBuffer())
}
