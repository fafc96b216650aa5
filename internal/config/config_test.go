package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "DATABASE_URL", "DB_PASSWORD", "JWT_SECRET", "JWT_TOKEN_TTL",
		"OUTBOX_MAX_RETRY", "OUTBOX_RETENTION_HOURS", "BOOTSTRAP_ADMIN_EMAIL",
		"BOOTSTRAP_ADMIN_PASSWORD", "SERVER_PORT", "REQUEST_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "teamboard", cfg.AppName)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "postgres://teamboard:@localhost:5432/teamboard?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, 3, cfg.Outbox.MaxRetry)
	assert.Equal(t, 24*time.Hour, cfg.OutboxRetention())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_TOKEN_TTL", "2h")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("OUTBOX_RETENTION_HOURS", "48")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/board")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, 2*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 48*time.Hour, cfg.OutboxRetention())
	assert.Equal(t, "postgres://u:p@db:5432/board", cfg.Database.URL)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("production requires jwt secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("bootstrap password length", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "root@example.com")
		t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "short")
		_, err := Load()
		assert.ErrorContains(t, err, "BOOTSTRAP_ADMIN_PASSWORD")
	})

	t.Run("outbox retries", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OUTBOX_MAX_RETRY", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "OUTBOX_MAX_RETRY")
	})
}
