package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, 6, cfg.MemoryWindow)
	assert.Equal(t, 3, cfg.KnowledgeLimit)
	assert.Equal(t, 3, cfg.ContentMonthlyLimit)
	assert.Equal(t, "gpt-4o", cfg.PremiumModel)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.SecondaryModel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ASSISTANT_MEMORY_WINDOW", "10")
	t.Setenv("SOLO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MemoryWindow)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadRejectsZeroWindow(t *testing.T) {
	t.Setenv("ASSISTANT_MEMORY_WINDOW", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLogLevelParsing(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg := Config{LogLevelRaw: tt.raw}
			assert.Equal(t, tt.want, cfg.LogLevel())
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("assistant ready", "port", "8787")

	assert.Contains(t, stderr.String(), "assistant ready")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "assistant ready", entry["msg"])
	assert.Equal(t, "8787", entry["port"])
}
