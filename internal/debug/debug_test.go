package debug

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for name, expected := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
		"":        slog.LevelInfo,
	} {
		require.Equal(t, expected, ParseLevel(name), name)
	}
}

func TestConfigureLevel(t *testing.T) {
	defer Configure("info", "")
	Configure("error", "")
	require.Equal(t, slog.LevelError, level.Level())
	require.Equal(t, DefaultFile, path)
}
