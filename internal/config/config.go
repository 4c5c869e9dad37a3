package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LayoutMode defines how windows are arranged.
type LayoutMode string

const (
	LayoutModeAuto       LayoutMode = "auto"       // Dynamic grid based on count.
	LayoutModeFixed      LayoutMode = "fixed"      // Specific rows × cols.
	LayoutModeVertical   LayoutMode = "vertical"   // Single column stack.
	LayoutModeHorizontal LayoutMode = "horizontal" // Single row side-by-side.
	LayoutModeCascade    LayoutMode = "cascade"    // Overlapping diagonal stack.
)

const (
	DefaultBuiltinLayout  = "grid"
	DefaultCascadeOffset  = 32
	DefaultMirrorInterval = 1000
	DefaultMetricsListen  = "127.0.0.1:9464"
)

// Hotkey actions. Each can be bound to an X11 key sequence such as
// "Mod4-Left" under the hotkeys section.
const (
	HotkeyFocusLeft    = "focus_left"
	HotkeyFocusRight   = "focus_right"
	HotkeyFocusUp      = "focus_up"
	HotkeyFocusDown    = "focus_down"
	HotkeyCycle        = "cycle"
	HotkeyCycleReverse = "cycle_reverse"
	HotkeyArrange      = "arrange"
)

// HotkeyActions lists every bindable action.
func HotkeyActions() []string {
	return []string{
		HotkeyFocusLeft, HotkeyFocusRight, HotkeyFocusUp, HotkeyFocusDown,
		HotkeyCycle, HotkeyCycleReverse, HotkeyArrange,
	}
}

// Point is a coordinate in layout units.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Size is a width/height pair in layout units.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Rect is the workspace area that layouts arrange windows into.
type Rect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// WindowDefaults is the geometry of windows opened without overrides.
type WindowDefaults struct {
	Position Point `yaml:"position"`
	Size     Size  `yaml:"size"`
}

// FixedGrid defines specific grid dimensions.
type FixedGrid struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// Layout defines an arrangement of windows.
type Layout struct {
	Mode            LayoutMode `yaml:"mode"`
	FixedGrid       FixedGrid  `yaml:"fixed_grid,omitempty"`
	CascadeOffset   int        `yaml:"cascade_offset,omitempty"`   // cascade only
	FlexibleLastRow bool       `yaml:"flexible_last_row,omitempty"` // Last row windows expand to fill width (auto mode only)
}

// MirrorConfig controls mirroring of X11 client windows into the registry.
type MirrorConfig struct {
	Enabled          bool `yaml:"enabled"`
	IntervalMS       int  `yaml:"interval_ms"`
	IncludeMinimized bool `yaml:"include_minimized"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig configures the registry action log.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/share/winstack/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config is the effective winstack configuration.
type Config struct {
	LogLevel      string            `yaml:"log_level"`
	DefaultWindow WindowDefaults    `yaml:"default_window"`
	Screen        Rect              `yaml:"screen"`
	GapSize       int               `yaml:"gap_size"`
	DefaultLayout string            `yaml:"default_layout"`
	Layouts       map[string]Layout `yaml:"layouts"`
	Mirror        MirrorConfig      `yaml:"mirror"`
	Metrics       MetricsConfig     `yaml:"metrics"`
	Logging       LoggingConfig     `yaml:"logging"`
	// Hotkeys maps an action name to a key sequence. Unbound by default.
	Hotkeys map[string]string `yaml:"hotkeys,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		DefaultWindow: WindowDefaults{
			Position: Point{X: 100, Y: 100},
			Size:     Size{Width: 600, Height: 400},
		},
		Screen:        Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		GapSize:       8,
		DefaultLayout: DefaultBuiltinLayout,
		Layouts:       BuiltinLayouts(),
		Mirror: MirrorConfig{
			Enabled:          false,
			IntervalMS:       DefaultMirrorInterval,
			IncludeMinimized: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  DefaultMetricsListen,
		},
	}
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	if c == nil {
		return slog.LevelInfo
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/winstack/actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// LayoutNames returns the configured layout names in sorted order.
func (c *Config) LayoutNames() []string {
	names := make([]string, 0, len(c.Layouts))
	for name := range c.Layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetLayout returns a validated copy of the named layout.
func (c *Config) GetLayout(name string) (*Layout, error) {
	layout, ok := c.Layouts[name]
	if !ok {
		return nil, fmt.Errorf("layout %q not found", name)
	}
	if err := validateLayout(&layout); err != nil {
		return nil, fmt.Errorf("invalid layout %q: %w", name, err)
	}
	return &layout, nil
}

func (c *Config) GetDefaultLayout() (*Layout, error) {
	return c.GetLayout(c.DefaultLayout)
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the effective config to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the effective config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.DefaultWindow.Size.Width <= 0 || c.DefaultWindow.Size.Height <= 0 {
		return &ValidationError{Path: "default_window.size", Err: fmt.Errorf("width and height must be > 0")}
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return &ValidationError{Path: "screen", Err: fmt.Errorf("width and height must be > 0")}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	if strings.TrimSpace(c.DefaultLayout) == "" {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout is required")}
	}
	if _, ok := c.Layouts[c.DefaultLayout]; !ok {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout %q not found in layouts", c.DefaultLayout)}
	}
	for _, name := range c.LayoutNames() {
		layout := c.Layouts[name]
		if err := validateLayout(&layout); err != nil {
			return &ValidationError{Path: "layouts." + name, Err: err}
		}
	}
	if c.Mirror.IntervalMS <= 0 {
		return &ValidationError{Path: "mirror.interval_ms", Err: fmt.Errorf("interval_ms must be > 0")}
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Listen) == "" {
		return &ValidationError{Path: "metrics.listen", Err: fmt.Errorf("listen address is required when metrics are enabled")}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging", Err: fmt.Errorf("max_size_mb and max_files must be >= 0")}
	}
	for _, action := range sortedKeys(c.Hotkeys) {
		if !slices.Contains(HotkeyActions(), action) {
			return &ValidationError{Path: "hotkeys." + action, Err: fmt.Errorf("unknown action %q (valid: %s)", action, strings.Join(HotkeyActions(), ", "))}
		}
	}
	return nil
}

func validateLayout(layout *Layout) error {
	switch layout.Mode {
	case LayoutModeAuto, LayoutModeVertical, LayoutModeHorizontal:
	case LayoutModeFixed:
		if layout.FixedGrid.Rows <= 0 || layout.FixedGrid.Cols <= 0 {
			return fmt.Errorf("fixed mode requires rows and cols to be positive")
		}
	case LayoutModeCascade:
		if layout.CascadeOffset <= 0 {
			return fmt.Errorf("cascade mode requires cascade_offset > 0")
		}
	default:
		return fmt.Errorf("invalid mode %q", layout.Mode)
	}
	return nil
}
