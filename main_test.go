package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("Honours every configured level", func(t *testing.T) {
		for level, want := range map[string]slog.Level{
			"debug": slog.LevelDebug,
			"info":  slog.LevelInfo,
			"warn":  slog.LevelWarn,
			"error": slog.LevelError,
		} {
			logger := initLogger(io.Discard, level)

			assert.True(t, logger.Enabled(ctx, want), level)
			assert.False(t, logger.Enabled(ctx, want-1), level)
		}
	})

	t.Run("Falls back to info for an unknown level", func(t *testing.T) {
		logger := initLogger(io.Discard, "verbose")

		assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("Writes JSON", func(t *testing.T) {
		var buf bytes.Buffer

		initLogger(&buf, "info").Info("catalog ready", "classes", 304)

		assert.Contains(t, buf.String(), `"msg":"catalog ready"`)
		assert.Contains(t, buf.String(), `"classes":304`)
	})
}

func TestConfigPath(t *testing.T) {
	t.Run("Uses the environment override", func(t *testing.T) {
		t.Setenv(configPathEnv, "/etc/menace/config.yml")

		assert.Equal(t, "/etc/menace/config.yml", configPath())
	})

	t.Run("Defaults to the working directory", func(t *testing.T) {
		t.Setenv(configPathEnv, "")

		path := configPath()

		require.True(t, filepath.IsAbs(path))
		assert.Equal(t, "config.yml", filepath.Base(path))
	})
}
