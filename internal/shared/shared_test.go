package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		out := buf.String()
		if !strings.Contains(out, "hello") {
			t.Errorf("expected log output to contain message, got %q", out)
		}
		if !strings.Contains(out, "key") {
			t.Errorf("expected log output to contain key, got %q", out)
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected a logger")
		}
	})
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Error("expected distinct IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string of length 36, got %d (%s)", len(a), a)
	}
}

func TestRunLogName(t *testing.T) {
	ts := time.Date(2025, 8, 21, 14, 30, 5, 0, time.UTC)
	got := RunLogName(ts)
	want := "tbsync_20250821_143005.log"
	if got != want {
		t.Errorf("RunLogName() = %q, want %q", got, want)
	}
}

func TestOpenRunLog(t *testing.T) {
	t.Run("creates the file in the given directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		ts := time.Date(2025, 8, 21, 14, 30, 5, 0, time.UTC)

		f, path, err := OpenRunLog(tmpDir, ts)
		if err != nil {
			t.Fatalf("failed to open run log: %v", err)
		}
		defer f.Close()

		if filepath.Dir(path) != tmpDir {
			t.Errorf("expected log in %s, got %s", tmpDir, path)
		}
		if filepath.Base(path) != "tbsync_20250821_143005.log" {
			t.Errorf("unexpected log name: %s", filepath.Base(path))
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("log file should exist: %v", err)
		}
	})

	t.Run("creates missing directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		nested := filepath.Join(tmpDir, "logs", "tbsync")

		f, path, err := OpenRunLog(nested, time.Now())
		if err != nil {
			t.Fatalf("failed to open run log: %v", err)
		}
		defer f.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("log file should exist: %v", err)
		}
	})
}
