package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// CaptureLogBuffer points the default slog logger at an in-memory text
// handler and restores the previous logger in t.Cleanup. Tests using it must
// not call t.Parallel.
func CaptureLogBuffer(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	originalLogger := slog.Default()
	var logBuf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() {
		slog.SetDefault(originalLogger)
	})
	return &logBuf
}
