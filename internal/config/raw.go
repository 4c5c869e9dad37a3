package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// Raw* types mirror the config file. Pointer fields distinguish "unset" from
// zero so layered files only override what they name.

type RawPoint struct {
	X *int `yaml:"x"`
	Y *int `yaml:"y"`
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawRect struct {
	X      *int `yaml:"x"`
	Y      *int `yaml:"y"`
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawWindowDefaults struct {
	Position *RawPoint `yaml:"position"`
	Size     *RawSize  `yaml:"size"`
}

type RawFixedGrid struct {
	Rows *int `yaml:"rows"`
	Cols *int `yaml:"cols"`
}

type RawLayout struct {
	Inherits        *string       `yaml:"inherits"`
	Mode            *LayoutMode   `yaml:"mode"`
	FixedGrid       *RawFixedGrid `yaml:"fixed_grid"`
	CascadeOffset   *int          `yaml:"cascade_offset"`
	FlexibleLastRow *bool         `yaml:"flexible_last_row"`
}

type RawMirrorConfig struct {
	Enabled          *bool `yaml:"enabled"`
	IntervalMS       *int  `yaml:"interval_ms"`
	IncludeMinimized *bool `yaml:"include_minimized"`
}

type RawMetricsConfig struct {
	Enabled *bool   `yaml:"enabled"`
	Listen  *string `yaml:"listen"`
}

type RawLoggingConfig struct {
	Enabled   *bool   `yaml:"enabled"`
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawConfig struct {
	Include       IncludeList          `yaml:"include"`
	LogLevel      *string              `yaml:"log_level"`
	DefaultWindow *RawWindowDefaults   `yaml:"default_window"`
	Screen        *RawRect             `yaml:"screen"`
	GapSize       *int                 `yaml:"gap_size"`
	DefaultLayout *string              `yaml:"default_layout"`
	Layouts       map[string]RawLayout `yaml:"layouts"`
	Mirror        *RawMirrorConfig     `yaml:"mirror"`
	Metrics       *RawMetricsConfig    `yaml:"metrics"`
	Logging       *RawLoggingConfig    `yaml:"logging"`
	Hotkeys       map[string]string    `yaml:"hotkeys"`
}

// override returns overlay when it is set, base otherwise.
func override[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	out.LogLevel = override(out.LogLevel, overlay.LogLevel)
	out.GapSize = override(out.GapSize, overlay.GapSize)
	out.DefaultLayout = override(out.DefaultLayout, overlay.DefaultLayout)

	if overlay.DefaultWindow != nil {
		dw := RawWindowDefaults{}
		if out.DefaultWindow != nil {
			dw = *out.DefaultWindow
		}
		if p := overlay.DefaultWindow.Position; p != nil {
			merged := RawPoint{}
			if dw.Position != nil {
				merged = *dw.Position
			}
			merged.X = override(merged.X, p.X)
			merged.Y = override(merged.Y, p.Y)
			dw.Position = &merged
		}
		if s := overlay.DefaultWindow.Size; s != nil {
			merged := RawSize{}
			if dw.Size != nil {
				merged = *dw.Size
			}
			merged.Width = override(merged.Width, s.Width)
			merged.Height = override(merged.Height, s.Height)
			dw.Size = &merged
		}
		out.DefaultWindow = &dw
	}

	if overlay.Screen != nil {
		screen := RawRect{}
		if out.Screen != nil {
			screen = *out.Screen
		}
		screen.X = override(screen.X, overlay.Screen.X)
		screen.Y = override(screen.Y, overlay.Screen.Y)
		screen.Width = override(screen.Width, overlay.Screen.Width)
		screen.Height = override(screen.Height, overlay.Screen.Height)
		out.Screen = &screen
	}

	if overlay.Layouts != nil {
		layouts := make(map[string]RawLayout, len(out.Layouts)+len(overlay.Layouts))
		for name, layout := range out.Layouts {
			layouts[name] = layout
		}
		for name, layout := range overlay.Layouts {
			if base, ok := layouts[name]; ok {
				layout = mergeRawLayout(base, layout)
			}
			layouts[name] = layout
		}
		out.Layouts = layouts
	}

	if overlay.Mirror != nil {
		m := RawMirrorConfig{}
		if out.Mirror != nil {
			m = *out.Mirror
		}
		m.Enabled = override(m.Enabled, overlay.Mirror.Enabled)
		m.IntervalMS = override(m.IntervalMS, overlay.Mirror.IntervalMS)
		m.IncludeMinimized = override(m.IncludeMinimized, overlay.Mirror.IncludeMinimized)
		out.Mirror = &m
	}

	if overlay.Metrics != nil {
		m := RawMetricsConfig{}
		if out.Metrics != nil {
			m = *out.Metrics
		}
		m.Enabled = override(m.Enabled, overlay.Metrics.Enabled)
		m.Listen = override(m.Listen, overlay.Metrics.Listen)
		out.Metrics = &m
	}

	if overlay.Logging != nil {
		l := RawLoggingConfig{}
		if out.Logging != nil {
			l = *out.Logging
		}
		l.Enabled = override(l.Enabled, overlay.Logging.Enabled)
		l.Level = override(l.Level, overlay.Logging.Level)
		l.File = override(l.File, overlay.Logging.File)
		l.MaxSizeMB = override(l.MaxSizeMB, overlay.Logging.MaxSizeMB)
		l.MaxFiles = override(l.MaxFiles, overlay.Logging.MaxFiles)
		out.Logging = &l
	}

	if overlay.Hotkeys != nil {
		hotkeys := make(map[string]string, len(out.Hotkeys)+len(overlay.Hotkeys))
		for action, keys := range out.Hotkeys {
			hotkeys[action] = keys
		}
		for action, keys := range overlay.Hotkeys {
			hotkeys[action] = keys
		}
		out.Hotkeys = hotkeys
	}

	return out
}

func mergeRawLayout(base RawLayout, overlay RawLayout) RawLayout {
	out := base
	out.Inherits = override(out.Inherits, overlay.Inherits)
	out.Mode = override(out.Mode, overlay.Mode)
	out.CascadeOffset = override(out.CascadeOffset, overlay.CascadeOffset)
	out.FlexibleLastRow = override(out.FlexibleLastRow, overlay.FlexibleLastRow)
	if overlay.FixedGrid != nil {
		grid := RawFixedGrid{}
		if out.FixedGrid != nil {
			grid = *out.FixedGrid
		}
		grid.Rows = override(grid.Rows, overlay.FixedGrid.Rows)
		grid.Cols = override(grid.Cols, overlay.FixedGrid.Cols)
		out.FixedGrid = &grid
	}
	return out
}
