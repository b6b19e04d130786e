package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestComponentLoggerJSON(t *testing.T) {
	defer Initialize("info", false)

	var buf bytes.Buffer
	InitializeTo(&buf, "debug", true)
	Component("apiclient").Debug("sent", "path", "/auth/user")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "apiclient", entry["component"])
	assert.Equal(t, "/auth/user", entry["path"])
	assert.Equal(t, "sent", entry["msg"])
}
