package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := New("debug", true, FileRotate{Enable: true, Filename: path, MaxSizeMB: 1})
	l.Info("listing created")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log output in rotated file")
	}
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New("loud", false, FileRotate{})
	defer cleanup()
	if l.Core().Enabled(-1) {
		t.Error("debug should be disabled at the fallback level")
	}
}
