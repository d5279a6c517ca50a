package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, slog.LevelInfo)).With("service", "stakingd")
	logger.Info("claimed", "account", "0xabc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "claimed", line["message"])
	require.Equal(t, "INFO", line["severity"])
	require.Contains(t, line, "timestamp")
	require.Equal(t, "stakingd", line["service"])
}

func TestHandlerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, slog.LevelWarn))
	logger.Info("dropped")
	require.Zero(t, buf.Len())
	logger.Warn("kept")
	require.NotZero(t, buf.Len())
}

func TestSetupWithOptionsWritesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "stakingd.log")
	logger := SetupWithOptions(Options{Service: "stakingd", Env: "test", File: path})
	logger.Info("started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"env":"test"`)
	require.Contains(t, string(data), `"message":"started"`)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	require.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("token", "secret").Value.String())
	require.Equal(t, "0xabc", MaskField("account", "0xabc").Value.String())
	require.Equal(t, "", MaskField("token", "").Value.String())
}
