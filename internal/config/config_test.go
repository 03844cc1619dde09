package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/checkout",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "test-secret-at-least-32-characters!!",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "checkout-api", cfg.JWTIssuer)
	require.Equal(t, 3, cfg.GatewayMaxAttempts)
	require.Equal(t, 60, cfg.RateLimitMax)
	require.False(t, cfg.ConfirmationEnabled)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""
	_, err := LoadForTests(env)
	require.Error(t, err)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	env := baseEnv()
	env["JWT_SECRET"] = ""
	_, err := LoadForTests(env)
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["GATEWAY_MAX_ATTEMPTS"] = "5"
	env["CONFIRMATION_ENABLED"] = "true"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example.com, https://b.example.com"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 5, cfg.GatewayMaxAttempts)
	require.True(t, cfg.ConfirmationEnabled)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}
