package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// CORS config
	assert.Empty(t, cfg.CORS.AllowOrigins)
	assert.True(t, cfg.CORS.AllowExtensions)

	// Launcher config
	assert.Equal(t, "/launcher", cfg.Launcher.Path)
	assert.True(t, cfg.Launcher.InjectBridge)
	assert.False(t, cfg.Launcher.SanitizeHTML)

	// Invoker config
	assert.Equal(t, 30*time.Second, cfg.Invoker.Timeout)
	assert.Equal(t, 0, cfg.Invoker.RetryMax)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/launcher", cfg.Launcher.Path)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
		"CORS_ALLOW_ORIGINS":     "https://a.example,https://b.example",
		"CORS_ALLOW_EXTENSIONS":  "false",
		"LAUNCHER_PATH":          "/open",
		"LAUNCHER_STORE_PATH":    "/tmp/rival.toml",
		"LAUNCHER_SANITIZE_HTML": "true",
		"INVOKER_TIMEOUT":        "5s",
		"INVOKER_RETRY_MAX":      "2",
		"INVOKER_RATE_LIMIT":     "1.5",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
	assert.False(t, cfg.CORS.AllowExtensions)
	assert.Equal(t, "/open", cfg.Launcher.Path)
	assert.Equal(t, "/tmp/rival.toml", cfg.Launcher.StorePath)
	assert.True(t, cfg.Launcher.SanitizeHTML)
	assert.Equal(t, 5*time.Second, cfg.Invoker.Timeout)
	assert.Equal(t, 2, cfg.Invoker.RetryMax)
	assert.InDelta(t, 1.5, cfg.Invoker.RateLimit, 0.0001)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("INVOKER_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
	assert.NotNil(t, LoadOrDefault())
}

func TestDefaultEndpoints(t *testing.T) {
	e := DefaultEndpoints()

	assert.Equal(t, "https://rival-internal.secretcult.network", e.RewriteMap()["http://34.171.49.45:4443"])
	assert.True(t, e.Allowed("http://anything.example:8080"))
	assert.Equal(t, "http://34.171.49.45:4443", e.Default)
}

func TestParseEndpoints(t *testing.T) {
	data := []byte(`
default: https://rival-internal.secretcult.network
allow:
  - "*.secretcult.network"
  - "localhost:*"
rewrites:
  - from: http://10.0.0.1:80
    to: https://internal.example
`)

	e, err := ParseEndpoints(data)
	require.NoError(t, err)

	tests := []struct {
		baseURL string
		allowed bool
	}{
		{"https://rival-internal.secretcult.network", true},
		{"https://RIVAL-internal.SecretCult.network/", true},
		{"http://localhost:3000", true},
		{"http://localhost", false},
		{"https://evil.example", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			assert.Equal(t, tt.allowed, e.Allowed(tt.baseURL))
		})
	}

	assert.Equal(t, map[string]string{"http://10.0.0.1:80": "https://internal.example"}, e.RewriteMap())
	assert.Equal(t, "https://rival-internal.secretcult.network", e.Default)
}

func TestParseEndpointsValidation(t *testing.T) {
	_, err := ParseEndpoints([]byte("allow:\n  - \"[\"\n"))
	assert.Error(t, err)

	_, err = ParseEndpoints([]byte("rewrites:\n  - from: http://a\n"))
	assert.Error(t, err)

	_, err = ParseEndpoints([]byte("allow: [unterminated"))
	assert.Error(t, err)
}

func TestLoadEndpointsFromFile(t *testing.T) {
	e, err := LoadEndpoints("")
	require.NoError(t, err)
	assert.Len(t, e.Rewrites, 1)

	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allow:\n  - \"api.example.com\"\n"), 0o644))

	e, err = LoadEndpoints(path)
	require.NoError(t, err)
	assert.True(t, e.Allowed("https://api.example.com"))
	assert.Empty(t, e.Rewrites)

	_, err = LoadEndpoints(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
