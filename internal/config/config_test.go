package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:8000/frontend/ws", cfg.WSURL)
	assert.Equal(t, StoreFile, cfg.CredentialStore)
	assert.Equal(t, 90*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.ReconnectAttempts)
	assert.Equal(t, time.Second, cfg.ReconnectBackoff)
	assert.Zero(t, cfg.TypingTimeout)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
	assert.False(t, cfg.HasCredentials())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("AUTH_USERNAME", "bot")
	t.Setenv("AUTH_PASSWORD", "secret")
	t.Setenv("CREDENTIAL_STORE", StoreMemory)
	t.Setenv("RECONNECT_ATTEMPTS", "0")
	t.Setenv("TYPING_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, StoreMemory, cfg.CredentialStore)
	assert.Equal(t, 0, cfg.ReconnectAttempts)
	assert.Equal(t, 45*time.Second, cfg.TypingTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"CREDENTIAL_STORE": "redis"}},
		{"postgres without url", map[string]string{"CREDENTIAL_STORE": StorePostgres}},
		{"negative attempts", map[string]string{"RECONNECT_ATTEMPTS": "-1"}},
		{"bad duration", map[string]string{"HTTP_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "DEBUG"}
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	cfg.LogLevel = "warning"
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())

	cfg.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestIsAllowedFileType(t *testing.T) {
	assert.True(t, IsAllowedFileType("application/pdf"))
	assert.True(t, IsAllowedFileType("image/webp"))
	assert.True(t, IsAllowedFileType("text/csv"))
	assert.False(t, IsAllowedFileType("application/zip"))
	assert.False(t, IsAllowedFileType(""))
}
