package config

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError ties a config problem to its YAML path and, when known,
// the file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig layers raw over DefaultConfig. It returns the config
// and, for every layout, the builtin it was derived from.
func BuildEffectiveConfig(raw RawConfig) (*Config, map[string]string, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if dw := raw.DefaultWindow; dw != nil {
		if dw.Position != nil {
			cfg.DefaultWindow.Position.X = derefInt(dw.Position.X, cfg.DefaultWindow.Position.X)
			cfg.DefaultWindow.Position.Y = derefInt(dw.Position.Y, cfg.DefaultWindow.Position.Y)
		}
		if dw.Size != nil {
			cfg.DefaultWindow.Size.Width = derefInt(dw.Size.Width, cfg.DefaultWindow.Size.Width)
			cfg.DefaultWindow.Size.Height = derefInt(dw.Size.Height, cfg.DefaultWindow.Size.Height)
		}
	}
	if s := raw.Screen; s != nil {
		cfg.Screen.X = derefInt(s.X, cfg.Screen.X)
		cfg.Screen.Y = derefInt(s.Y, cfg.Screen.Y)
		cfg.Screen.Width = derefInt(s.Width, cfg.Screen.Width)
		cfg.Screen.Height = derefInt(s.Height, cfg.Screen.Height)
	}
	cfg.GapSize = derefInt(raw.GapSize, cfg.GapSize)
	if raw.DefaultLayout != nil {
		cfg.DefaultLayout = strings.TrimSpace(*raw.DefaultLayout)
	}

	layoutBases, err := applyLayouts(cfg, raw)
	if err != nil {
		return nil, nil, err
	}

	if m := raw.Mirror; m != nil {
		cfg.Mirror.Enabled = derefBool(m.Enabled, cfg.Mirror.Enabled)
		cfg.Mirror.IntervalMS = derefInt(m.IntervalMS, cfg.Mirror.IntervalMS)
		cfg.Mirror.IncludeMinimized = derefBool(m.IncludeMinimized, cfg.Mirror.IncludeMinimized)
	}
	if m := raw.Metrics; m != nil {
		cfg.Metrics.Enabled = derefBool(m.Enabled, cfg.Metrics.Enabled)
		if m.Listen != nil {
			cfg.Metrics.Listen = strings.TrimSpace(*m.Listen)
		}
	}
	if l := raw.Logging; l != nil {
		cfg.Logging.Enabled = derefBool(l.Enabled, cfg.Logging.Enabled)
		if l.Level != nil {
			cfg.Logging.Level = *l.Level
		}
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
		cfg.Logging.MaxSizeMB = derefInt(l.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(l.MaxFiles, cfg.Logging.MaxFiles)
	}
	// An empty key sequence unbinds an action set by an earlier file.
	for action, keys := range raw.Hotkeys {
		keys = strings.TrimSpace(keys)
		if keys == "" {
			continue
		}
		if cfg.Hotkeys == nil {
			cfg.Hotkeys = make(map[string]string)
		}
		cfg.Hotkeys[strings.TrimSpace(action)] = keys
	}

	return cfg, layoutBases, nil
}

func applyLayouts(cfg *Config, raw RawConfig) (map[string]string, error) {
	builtin := BuiltinLayouts()

	cfg.Layouts = make(map[string]Layout, len(builtin)+len(raw.Layouts))
	layoutBases := make(map[string]string, len(builtin)+len(raw.Layouts))
	for name, layout := range builtin {
		cfg.Layouts[name] = layout
		layoutBases[name] = name
	}

	for _, name := range sortedKeys(raw.Layouts) {
		patch := raw.Layouts[name]
		baseName, baseLayout, err := selectLayoutBase(name, patch, builtin)
		if err != nil {
			return nil, err
		}
		merged := mergeLayoutPatch(baseLayout, patch)
		if err := validateLayout(&merged); err != nil {
			return nil, &ValidationError{Path: "layouts." + name, Err: err}
		}
		cfg.Layouts[name] = merged
		layoutBases[name] = baseName
	}

	return layoutBases, nil
}

// selectLayoutBase picks the builtin a user layout starts from: the
// "builtin:<name>" named by inherits, the builtin of the same name, or grid.
func selectLayoutBase(name string, patch RawLayout, builtin map[string]Layout) (string, Layout, error) {
	ref := ""
	if patch.Inherits != nil {
		ref = strings.TrimSpace(*patch.Inherits)
	}

	baseName := DefaultBuiltinLayout
	if _, ok := builtin[name]; ok {
		baseName = name
	}

	if ref != "" {
		const prefix = "builtin:"
		if !strings.HasPrefix(ref, prefix) {
			return "", Layout{}, &ValidationError{
				Path: "layouts." + name + ".inherits",
				Err:  fmt.Errorf("inherits must be %q-prefixed, got %q", prefix, ref),
			}
		}
		baseName = strings.TrimSpace(strings.TrimPrefix(ref, prefix))
	}

	baseLayout, ok := builtin[baseName]
	if !ok {
		return "", Layout{}, &ValidationError{
			Path: "layouts." + name + ".inherits",
			Err:  fmt.Errorf("unknown builtin layout %q", baseName),
		}
	}
	return baseName, baseLayout, nil
}

func mergeLayoutPatch(base Layout, patch RawLayout) Layout {
	out := base
	if patch.Mode != nil {
		out.Mode = *patch.Mode
	}
	if patch.FixedGrid != nil {
		out.FixedGrid.Rows = derefInt(patch.FixedGrid.Rows, out.FixedGrid.Rows)
		out.FixedGrid.Cols = derefInt(patch.FixedGrid.Cols, out.FixedGrid.Cols)
	}
	out.CascadeOffset = derefInt(patch.CascadeOffset, out.CascadeOffset)
	if out.Mode == LayoutModeCascade && out.CascadeOffset == 0 {
		out.CascadeOffset = DefaultCascadeOffset
	}
	out.FlexibleLastRow = derefBool(patch.FlexibleLastRow, out.FlexibleLastRow)
	return out
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
