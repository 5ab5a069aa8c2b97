package core

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestLogDefaultIsSilent(t *testing.T) {
	l := Log()
	if l == nil {
		t.Fatal("Log() returned nil")
	}
	if l.Enabled(nil, slog.LevelError) {
		t.Error("default logger reports Enabled(Error) = true, want false (nop handler)")
	}
}

func TestSetLoggerReplacesDefault(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)
	Log().Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Error("expected custom logger to receive a record, buffer is empty")
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	defer SetLogger(nil)
	SetLogger(nil)
	if Log().Enabled(nil, slog.LevelError) {
		t.Error("SetLogger(nil) did not restore a silent handler")
	}
}
