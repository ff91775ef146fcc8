package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("dev", slog.LevelError))
	require.Equal(t, slog.LevelInfo, ParseLevel(" INFO ", slog.LevelError))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning", slog.LevelError))
	require.Equal(t, slog.LevelError, ParseLevel("prod", slog.LevelInfo))
	require.Equal(t, slog.LevelInfo, ParseLevel("", slog.LevelInfo))
	require.Equal(t, slog.LevelError, ParseLevel("verbose", slog.LevelError))
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.Info("quiet")
	log.Warn("loud", "room", "r1")

	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
	require.Contains(t, buf.String(), "room=r1")
}
