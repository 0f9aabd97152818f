package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Info("skipped")
	l.Debugf("skipped %d", 1)
	l.Warnf("disk %s", "full")
	l.Error("failed")

	require.Equal(t, "[WARN] disk full\n[ERROR] failed\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, DebugLevel, ParseLevel("debug"))
	require.Equal(t, WarnLevel, ParseLevel("WARN"))
	require.Equal(t, ErrorLevel, ParseLevel("Error"))
	require.Equal(t, InfoLevel, ParseLevel("verbose"))
	require.Equal(t, slog.LevelDebug, DebugLevel.SlogLevel())
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "session.log")

	l, f, err := NewFileLogger(path, slog.LevelInfo)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("decoded superblock", "block_size", 512)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "decoded superblock")
	require.Contains(t, string(data), "block_size=512")
	require.NotContains(t, string(data), "hidden")

	l, f, err = NewFileLogger("", slog.LevelDebug)
	require.NoError(t, err)
	require.Nil(t, f)
	l.Info("discarded")
}
