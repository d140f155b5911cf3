package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("Bill created", "bill_id", "b1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Bill created", line["msg"])
	assert.Equal(t, "b1", line["bill_id"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, "text")

	logger.Info("hidden")
	logger.Warn("Viewer rejected", "bill_id", "b1")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Viewer rejected")
	assert.Contains(t, buf.String(), "b1")
}
