package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
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
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestLevelRouter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	lr, cleanup, err := newRouter(&stdout, &stderr, slog.LevelInfo, "text", "")
	require.NoError(t, err)
	defer cleanup()

	log := slog.New(lr)
	log.Debug("hidden")
	log.Info("hello", "k", "v")
	log.Warn("careful")
	log.Error("broken")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "hello")
	assert.Contains(t, stdout.String(), "careful")
	assert.NotContains(t, stdout.String(), "broken")
	assert.Contains(t, stderr.String(), "broken")
	assert.NotContains(t, stderr.String(), "hello")
}

func TestLevelRouterFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")

	lr, cleanup, err := newRouter(&stdout, &stderr, slog.LevelInfo, "json", path)
	require.NoError(t, err)

	log := slog.New(lr).With("component", "test")
	log.Info("to stdout")
	log.Error("to stderr")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"msg":"to stdout"`)
	assert.Contains(t, lines[1], `"msg":"to stderr"`)
	assert.Contains(t, lines[1], `"component":"test"`)
}

func TestLevelRouterBadFile(t *testing.T) {
	_, _, err := newRouter(&bytes.Buffer{}, &bytes.Buffer{}, slog.LevelInfo, "text", filepath.Join(t.TempDir(), "missing", "app.log"))
	require.Error(t, err)
}
