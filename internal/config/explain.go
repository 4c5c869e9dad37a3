package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path and where it came
// from, e.g.
//
//	gap_size
//	screen.width
//	default_window.size.height
//	layouts.<name>.mode
//	mirror.interval_ms
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	if name := layoutNameFromPath(path); name != "" {
		return value, Source{Kind: SourceBuiltin, Name: res.LayoutBases[name]}, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func layoutNameFromPath(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "layouts" {
		return ""
	}
	return parts[1]
}

// lookupValue walks the config's YAML form so every key the file accepts can
// be explained without a per-field switch.
func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	var cur any = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		next, ok := m[part]
		if !ok {
			if layoutNameFromPath(path) == part {
				return nil, fmt.Errorf("unknown layout %q", part)
			}
			if knownOptional(path) {
				return zeroFor(path), nil
			}
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		cur = next
	}
	return cur, nil
}

// omitempty keys vanish from the marshalled form when zero.
var optionalLeaves = []string{
	"fixed_grid", "cascade_offset", "flexible_last_row",
	"enabled", "level", "file", "max_size_mb", "max_files",
}

func knownOptional(path string) bool {
	parts := strings.Split(path, ".")
	last := parts[len(parts)-1]
	if len(parts) >= 2 && parts[len(parts)-2] == "fixed_grid" && (last == "rows" || last == "cols") {
		return true
	}
	for _, leaf := range optionalLeaves {
		if leaf == last {
			return true
		}
	}
	return false
}

func zeroFor(path string) any {
	switch {
	case strings.HasSuffix(path, ".flexible_last_row"), strings.HasSuffix(path, ".enabled"):
		return false
	case strings.HasSuffix(path, ".level"), strings.HasSuffix(path, ".file"):
		return ""
	default:
		return 0
	}
}
