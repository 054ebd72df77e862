package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:9000/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Dev, "local env defaults to dev mode")
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, "templates", cfg.TemplatesDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"STORE_WEB_ENV":                 "prod",
		"STORE_WEB_ADDR":                ":9090",
		"STORE_WEB_API_BASE_URL":        "https://api.brightcart.io/api",
		"STORE_WEB_SESSION_SIGNING_KEY": "key",
		"STORE_WEB_READ_TIMEOUT":        "5s",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://api.brightcart.io/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Session.Secure)
	assert.False(t, cfg.Dev)
	assert.Equal(t, "key", cfg.Session.SigningKey)
}

func TestLoadPortFallback(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"PORT": "7777",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
}

func TestLoadValidatesRequiredFields(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"STORE_WEB_API_BASE_URL": " ",
	}))
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "API.BaseURL")
}
