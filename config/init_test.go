package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "jwt:\n  secret: unit-test-secret\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "access_token", cfg.JWT.CookieName)
	assert.Equal(t, 5, cfg.Guardian.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Storage.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Storage.MaxAvatarMB)
	assert.Equal(t, 15, cfg.PasswordReset.OTPTTLMinutes)
	assert.Equal(t, 3, cfg.PasswordReset.MaxAttempts)
	assert.Equal(t, 12, cfg.PasswordReset.TempPassLength)
	assert.False(t, cfg.Mail.Enabled)
}

func TestLoadRejectsDefaultSecret(t *testing.T) {
	writeConfig(t, "server:\n  address: 0.0.0.0\n")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestLoadRejectsMailWithoutHost(t *testing.T) {
	writeConfig(t, "jwt:\n  secret: unit-test-secret\nmail:\n  enabled: true\n")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail.host")
}

func TestLoadOverridesFromFile(t *testing.T) {
	writeConfig(t, `
jwt:
  secret: unit-test-secret
guardian:
  url: http://guardian.internal:9000
  timeout_seconds: 7
password_reset:
  max_attempts: 5
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://guardian.internal:9000", cfg.Guardian.URL)
	assert.Equal(t, 7, cfg.Guardian.TimeoutSeconds)
	assert.Equal(t, 5, cfg.PasswordReset.MaxAttempts)
}
