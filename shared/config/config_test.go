package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	if private != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	}
	return dir
}

func TestMustLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, "port: \"9000\"\n", "session_key: 'a-very-secret-session-key'\n")

	cfg := MustLoad(dir)

	assert.Equal(t, "9000", cfg.Public.Port)
	assert.Equal(t, DefaultAPIBaseURL, cfg.Public.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Public.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Public.VisitorTTL)
	assert.Equal(t, 10000, cfg.Public.MaxVisitors)
	assert.Equal(t, "a-very-secret-session-key", cfg.SessionKey())
}

func TestMustLoad_FileValues(t *testing.T) {
	dir := writeConfig(t,
		"api_base_url: https://backend.internal/api\nrequest_timeout: 3s\nvisitor_ttl: 1h\nsecure_cookies: true\nallowed_origins: [\"https://portal.example\"]\n",
		"session_key: 'a-very-secret-session-key'\n")

	cfg := MustLoad(dir)

	assert.Equal(t, "https://backend.internal/api", cfg.Public.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.Public.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.Public.VisitorTTL)
	assert.True(t, cfg.Public.SecureCookies)
	assert.Equal(t, []string{"https://portal.example"}, cfg.Public.AllowedOrigins)
}

func TestMustLoad_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "api_base_url: https://from-file/api\n", "")
	t.Setenv("API_BASE_URL", "https://from-env/api")
	t.Setenv("SESSION_KEY", "session-key-from-environment")
	t.Setenv("LOG_JSON", "true")

	cfg := MustLoad(dir)

	assert.Equal(t, "https://from-env/api", cfg.Public.APIBaseURL)
	assert.Equal(t, "session-key-from-environment", cfg.SessionKey())
	assert.True(t, cfg.Public.LogJSON)
}

func TestMustLoad_RequiredFields(t *testing.T) {
	// session_key is intentionally missing
	dir := writeConfig(t, "port: \"8081\"\n", "")

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing session key, got none")
		}
	}()

	_ = MustLoad(dir)
}

func TestMustLoad_InvalidBaseURL(t *testing.T) {
	dir := writeConfig(t, "api_base_url: not a url\n", "session_key: 'a-very-secret-session-key'\n")

	assert.Panics(t, func() { _ = MustLoad(dir) })
}

func TestMustLoad_DurationsMustBePositive(t *testing.T) {
	for _, field := range []string{"request_timeout", "visitor_ttl", "sweep_interval"} {
		t.Run(field, func(t *testing.T) {
			dir := writeConfig(t, field+": -1m\n", "session_key: 'a-very-secret-session-key'\n")
			assert.Panics(t, func() { _ = MustLoad(dir) })
		})
	}
}

func TestMustLoad_MaxVisitorsMustBePositive(t *testing.T) {
	dir := writeConfig(t, "max_visitors: -5\n", "session_key: 'a-very-secret-session-key'\n")

	assert.Panics(t, func() { _ = MustLoad(dir) })
}
