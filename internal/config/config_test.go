package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tong-pos/api/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "POS_TIMEZONE", "AUTO_MIGRATE", "RABBITMQ_URL", "CORS_ORIGINS", "POS_CONFIG"} {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "Europe/London", cfg.Timezone)
	assert.False(t, cfg.AutoMigrate)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "pos.yaml")
	body := "port: \"9000\"\ntimezone: Asia/Dhaka\nrabbitmq_url: amqp://file\nallowed_origins:\n  - https://a.example\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("POS_CONFIG", path)
	t.Setenv("RABBITMQ_URL", "amqp://env")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("CORS_ORIGINS", "https://b.example, https://c.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "Asia/Dhaka", cfg.Timezone)
	assert.Equal(t, "amqp://env", cfg.RabbitMQURL)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.AllowedOrigins)
}

func TestLoad_BadTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("POS_TIMEZONE", "Mars/Olympus")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_BadAutoMigrate(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTO_MIGRATE", "sometimes")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("POS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := config.Load()
	require.Error(t, err)
}
