package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
)

// Source records where a config value came from.
type Source struct {
	Kind   SourceKind
	Name   string // builtin/default name
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	switch s.Kind {
	case SourceFile:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	case SourceBuiltin:
		return "builtin:" + s.Name
	default:
		return "default"
	}
}

// LoadResult is a loaded config plus the provenance needed by `config explain`.
type LoadResult struct {
	Config      *Config
	Sources     map[string]Source // YAML path -> last file that set it
	LayoutBases map[string]string // layout name -> builtin base name
	Files       []string          // loaded files in merge order
}

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "WINSTACK_CONFIG"

func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winstack", "config.yaml"), nil
}

// Load reads the config from the default location. A missing file yields
// DefaultConfig.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes, builds the effective config and
// validates it. Validation errors carry the file position of the bad key.
func LoadFromPath(path string) (*LoadResult, error) {
	raw := RawConfig{}
	sources := map[string]Source{}
	var files []string

	exists, err := pathExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		l := &includeLoader{seen: make(map[string]struct{})}
		fileRaw, fileSources, loaded, err := l.load(path, nil)
		if err != nil {
			return nil, err
		}
		raw = fileRaw
		sources = fileSources
		files = loaded
	}

	cfg, layoutBases, err := BuildEffectiveConfig(raw)
	if err != nil {
		return nil, attachSourceContext(err, sources)
	}
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{
		Config:      cfg,
		Sources:     sources,
		LayoutBases: layoutBases,
		Files:       files,
	}, nil
}

type includeRef struct {
	Value  string
	Source Source
}

type includeLoader struct {
	seen map[string]struct{}
}

// load merges includes first and the including file last, so the including
// file wins. Files already merged elsewhere are skipped.
func (l *includeLoader) load(path string, stack []string) (RawConfig, map[string]Source, []string, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, nil, nil, err
	}
	for _, existing := range stack {
		if existing == canon {
			return RawConfig{}, nil, nil, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(stack, " -> "), canon)
		}
	}
	if _, ok := l.seen[canon]; ok {
		return RawConfig{}, map[string]Source{}, nil, nil
	}
	l.seen[canon] = struct{}{}

	data, err := os.ReadFile(canon)
	if err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: failed to read: %w", canon, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}
	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: %w", canon, err)
	}

	merged := RawConfig{}
	mergedSources := map[string]Source{}
	var files []string

	for _, ref := range collectIncludeRefs(&doc, canon) {
		paths, err := expandInclude(canon, ref.Value)
		if err != nil {
			return RawConfig{}, nil, nil, fmt.Errorf("%s: include %q: %w", ref.Source, ref.Value, err)
		}
		for _, incPath := range paths {
			incRaw, incSources, incFiles, err := l.load(incPath, append(stack, canon))
			if err != nil {
				return RawConfig{}, nil, nil, err
			}
			merged = merged.merge(incRaw)
			for p, src := range incSources {
				mergedSources[p] = src
			}
			files = append(files, incFiles...)
		}
	}

	merged = merged.merge(raw)
	for p, src := range collectSources(&doc, canon) {
		mergedSources[p] = src
	}
	files = append(files, canon)

	return merged, mergedSources, files, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude resolves an include entry. Directories expand to their
// *.yaml/*.yml files in lexical order.
func expandInclude(baseFile string, include string) ([]string, error) {
	path, err := resolvePathRelativeToFile(baseFile, include)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, ent.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func resolvePathRelativeToFile(baseFile string, include string) (string, error) {
	if include == "" {
		return "", fmt.Errorf("path is empty")
	}
	if include == "~" || strings.HasPrefix(include, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		include = filepath.Join(home, strings.TrimPrefix(include, "~"))
	}
	if filepath.IsAbs(include) {
		return include, nil
	}
	return filepath.Join(filepath.Dir(baseFile), include), nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc == nil {
		return nil
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

func fileSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

// collectSources maps every dotted key path in doc to its position.
func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	var walk func(node *yaml.Node, prefix string)
	walk = func(node *yaml.Node, prefix string) {
		if node == nil {
			return
		}
		switch node.Kind {
		case yaml.MappingNode:
			for i := 0; i+1 < len(node.Content); i += 2 {
				path := node.Content[i].Value
				if prefix != "" {
					path = prefix + "." + path
				}
				val := node.Content[i+1]
				out[path] = fileSource(file, val)
				walk(val, path)
			}
		case yaml.SequenceNode:
			if prefix != "" {
				out[prefix] = fileSource(file, node)
			}
		}
	}
	walk(rootMapping(doc), "")
	return out
}

func collectIncludeRefs(doc *yaml.Node, file string) []includeRef {
	node := rootMapping(doc)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "include" {
			continue
		}
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			return []includeRef{{Value: val.Value, Source: fileSource(file, val)}}
		case yaml.SequenceNode:
			refs := make([]includeRef, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					refs = append(refs, includeRef{Value: item.Value, Source: fileSource(file, item)})
				}
			}
			return refs
		}
		return nil
	}
	return nil
}

func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}
