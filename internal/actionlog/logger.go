// Package actionlog writes registry mutations to a rotating plain-text log.
package actionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/windows"
)

// LogLevel defines the logging verbosity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// actionLevel returns the log level for a registry action. Updates are
// frequent while the X11 mirror runs, so they only show at debug.
func actionLevel(action windows.Action) LogLevel {
	switch action {
	case windows.ActionUpdate:
		return LevelDebug
	case windows.ActionReset:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// LogConfig holds configuration for the action logger.
type LogConfig struct {
	Enabled   bool
	Level     LogLevel
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// ConfigFrom converts the logging section of the config file.
func ConfigFrom(cfg config.LoggingConfig) LogConfig {
	return LogConfig{
		Enabled:   cfg.Enabled,
		Level:     ParseLogLevel(cfg.Level),
		FilePath:  cfg.File,
		MaxSizeMB: cfg.MaxSizeMB,
		MaxFiles:  cfg.MaxFiles,
	}
}

// Logger appends one line per registry action and rotates the file once it
// exceeds MaxSizeMB. A nil or disabled Logger discards everything.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      LogConfig
	currentSize int64
	now         func() time.Time
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LogConfig) (*Logger, error) {
	l := &Logger{config: cfg, now: time.Now}
	if !cfg.Enabled {
		return l, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	l.file = f
	l.currentSize = stat.Size()
	return l, nil
}

// Observer returns a registry observer that logs every event.
func (l *Logger) Observer() windows.Observer {
	return func(ev windows.Event) {
		l.LogEvent(ev)
	}
}

// LogEvent records a registry event.
func (l *Logger) LogEvent(ev windows.Event) {
	details := map[string]any{
		"version": ev.Snapshot.Version(),
		"windows": ev.Snapshot.Len(),
	}
	if focused, ok := ev.Snapshot.FocusedID(); ok && ev.FocusChanged {
		details["focused"] = focused
	}
	if w, ok := ev.Snapshot.Get(ev.ID); ok {
		details["state"] = w.State.String()
		details["z"] = w.ZIndex
	}
	l.Log(ev.Action, ev.ID, details)
}

// Log writes one entry. String details are quoted; keys are sorted.
func (l *Logger) Log(action windows.Action, id string, details map[string]any) {
	if l == nil || !l.config.Enabled {
		return
	}
	if actionLevel(action) < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	maxBytes := int64(l.config.MaxSizeMB) * 1024 * 1024
	if maxBytes > 0 && l.currentSize >= maxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(l.now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")
	if id != "" {
		fmt.Fprintf(&sb, " id=%q", id)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := details[k].(string); ok {
			fmt.Fprintf(&sb, " %s=%q", k, s)
		} else {
			fmt.Fprintf(&sb, " %s=%v", k, details[k])
		}
	}
	sb.WriteString("\n")

	n, err := l.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

// Close closes the logger and releases resources.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts actions.log -> actions.log.1 -> ... -> actions.log.<MaxFiles>,
// dropping the oldest.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	base := l.config.FilePath
	if l.config.MaxFiles > 0 {
		os.Remove(fmt.Sprintf("%s.%d", base, l.config.MaxFiles))
		for i := l.config.MaxFiles - 1; i >= 1; i-- {
			os.Rename(fmt.Sprintf("%s.%d", base, i), fmt.Sprintf("%s.%d", base, i+1))
		}
		if err := os.Rename(base, base+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	} else if err := os.Remove(base); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate log file: %w", err)
	}

	f, err := os.OpenFile(base, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}

// ParseLogLevel converts a string to LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
