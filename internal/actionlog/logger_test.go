package actionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/windows"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestLogger_RecordsRegistryActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "actions.log")
	l, err := NewLogger(LogConfig{Enabled: true, Level: LevelInfo, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	reg := windows.New(windows.Config{})
	cancel := reg.Subscribe(l.Observer())
	defer cancel()

	reg.AddWindow("w1", windows.Patch{})
	reg.UpdateWindow("w1", windows.PatchPosition(5, 5)) // debug only
	reg.MinimizeWindow("w1")
	reg.RemoveWindow("w1")

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	want := `2026-01-02 03:04:05 [ADD] id="w1" focused="w1" state="normal" version=1 windows=1 z=1001`
	if lines[0] != want {
		t.Fatalf("line 0 = %q\nwant     %q", lines[0], want)
	}
	if !strings.Contains(lines[1], "[MINIMIZE]") || !strings.Contains(lines[1], `state="minimized"`) {
		t.Fatalf("unexpected minimize line %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], `[REMOVE] id="w1" version=4 windows=0`) {
		t.Fatalf("unexpected remove line %q", lines[2])
	}
}

func TestLogger_DebugIncludesUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := NewLogger(LogConfig{Enabled: true, Level: LevelDebug, FilePath: path, MaxSizeMB: 1, MaxFiles: 1})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Log(windows.ActionUpdate, "w1", nil)
	if lines := readLines(t, path); len(lines) != 1 || !strings.Contains(lines[0], "[UPDATE]") {
		t.Fatalf("expected update line, got %q", lines)
	}
}

func TestLogger_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 1024*1024)), 0600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	l, err := NewLogger(LogConfig{Enabled: true, Level: LevelInfo, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Log(windows.ActionFocus, "w1", nil)

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated file: %v", err)
	}
	if lines := readLines(t, path); len(lines) != 1 || !strings.Contains(lines[0], "[FOCUS]") {
		t.Fatalf("expected fresh log with one entry, got %q", lines)
	}
}

func TestLogger_DisabledAndNilAreNoops(t *testing.T) {
	l, err := NewLogger(LogConfig{Enabled: false, FilePath: filepath.Join(t.TempDir(), "never.log")})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Log(windows.ActionAdd, "w1", nil)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var nilLogger *Logger
	nilLogger.Log(windows.ActionAdd, "w1", nil)
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestConfigFrom(t *testing.T) {
	got := ConfigFrom(config.LoggingConfig{Enabled: true, Level: "warn", File: "/tmp/a.log", MaxSizeMB: 5, MaxFiles: 2})
	if !got.Enabled || got.Level != LevelWarn || got.FilePath != "/tmp/a.log" || got.MaxSizeMB != 5 || got.MaxFiles != 2 {
		t.Fatalf("unexpected config %+v", got)
	}
}
