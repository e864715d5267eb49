package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:3000", c.APIBaseURL)
	assert.Equal(t, DefaultUsersAPIPaths, c.UsersAPIPaths)
	assert.Equal(t, "/api/usuarios_registrados", c.UsersAPIPaths[0])
	assert.Equal(t, "/api/usuarios_registrados", c.DeleteFallbackPath)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.AdminEmails)
}

func TestLoadDefaults_PathsAreACopy(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.UsersAPIPaths[0] = "/changed"

	assert.Equal(t, "/api/usuarios_registrados", DefaultUsersAPIPaths[0])
}

func TestLoadConfig_UsesDefaultsWithoutArgs(t *testing.T) {
	cfg := LoadConfig(nil)

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestIsAdmin(t *testing.T) {
	c := &Config{AdminEmails: []string{"Root@Example.com", " ops@example.com "}}

	assert.True(t, c.IsAdmin("root@example.com"))
	assert.True(t, c.IsAdmin("  OPS@example.com"))
	assert.False(t, c.IsAdmin("someone@example.com"))
	assert.False(t, c.IsAdmin(""))
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"api_url":   "https://json.example",
		"auth_url":  "https://auth.json.example",
		"log_level": "warn",
	})
	t.Setenv("ACCOUNTKEEPER_AUTH_URL", "https://auth.env.example")
	t.Setenv("ACCOUNTKEEPER_LOG_LEVEL", "error")

	cfg := LoadConfig([]string{"-c", path, "-log", "debug"})

	assert.Equal(t, "https://json.example", cfg.APIBaseURL)
	assert.Equal(t, "https://auth.env.example", cfg.AuthURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}
