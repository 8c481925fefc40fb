package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
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
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"debug-2", slog.LevelDebug - 2},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLevel))
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "text")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "frames", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "frames=3")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "JSON")
	require.NoError(t, err)

	logger.Debug("running on GPU", "name", "Fake GPU")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "running on GPU", record["msg"])
	assert.Equal(t, "Fake GPU", record["name"])
	assert.Equal(t, "DEBUG", record["level"])
}

func TestNewRejectsFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFormat))

	assert.NoError(t, Validate("info", "text"))
	assert.True(t, errors.Is(Validate("loud", "text"), ErrInvalidLevel))
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "error", FormatJSON)
	require.NoError(t, err)

	cause := errors.WithHint(errors.New("layer VK_LAYER_KHRONOS_validation"), "install the LunarG Vulkan SDK")
	ReportError(logger, "startup failed", errors.Wrap(cause, "create instance"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "startup failed", record["msg"])
	assert.Equal(t, "install the LunarG Vulkan SDK", record["hint"])

	detail, ok := record["err"].(string)
	require.True(t, ok)
	assert.Contains(t, detail, "create instance: layer VK_LAYER_KHRONOS_validation")
	assert.Contains(t, detail, "TestReportError")
}

func TestReportErrorWithoutHint(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", FormatText)
	require.NoError(t, err)

	ReportError(logger, "frame failed", errors.New("device lost"))

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "device lost")
	assert.NotContains(t, out, "hint=")
}
