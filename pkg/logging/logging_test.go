package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"l14core/pkg/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggerConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("laid out", zap.Int("commands", 3))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "laid out", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "l14", entry["logger"])
	assert.EqualValues(t, 3, entry["commands"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggerConfig{Level: "warn", Format: "console"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNew_BadLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggerConfig{Level: "loud", Format: "console"}, &buf)
	logger.Debug("debug")
	logger.Info("info")
	assert.NotContains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "info")
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l14.log")
	var buf bytes.Buffer
	logger := New(config.LoggerConfig{Level: "info", Format: "console", File: path, MaxSize: 1}, &buf)
	logger.Info("to both")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"to both"`), "file contents: %s", data)
	assert.Contains(t, buf.String(), "to both")
}
