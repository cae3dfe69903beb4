// Package styles is the style-configuration collaborator for the diagram
// emitters. It resolves symbolic names (node kinds, categories, edge
// style buckets) to plain style records with a three-tier fallback:
// primary TOML configuration file → built-in emergency defaults →
// caller-supplied default. Lookups never fail; a missing or malformed
// configuration file degrades to the built-in defaults.
//
// Config is an explicit, constructor-injected object. The file is loaded
// once on first use and memoized; Reload drops the cache so the next
// lookup re-reads the file. Concurrent reads are safe once loaded.
package styles

import (
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/secmap/pkg/errors"
)

// Style is a plain visual property record for a node class or an edge
// style bucket. Zero-valued fields inherit from the fallback tiers.
type Style struct {
	Fill   string  `toml:"fill"`
	Stroke string  `toml:"stroke"`
	Width  float64 `toml:"width"`
	Dash   string  `toml:"dash"` // stroke dash pattern, e.g. "5 5"
	Color  string  `toml:"color"`
}

// Spacing holds layout tuning parameters queried by the emitters.
type Spacing struct {
	// AnchorBase is the base tilde count for hidden anchor links; the
	// rank distance is added on top.
	AnchorBase int `toml:"anchor_base"`
}

// Config resolves style lookups against a TOML file with built-in
// fallback defaults. The zero value is not usable - use NewConfig.
type Config struct {
	path string

	mu     sync.RWMutex
	tree   map[string]any
	loaded bool
}

// NewConfig creates a config backed by the TOML file at path. The file
// is not read until the first lookup; an empty path skips the file tier
// entirely and serves built-in defaults only.
func NewConfig(path string) *Config {
	return &Config{path: path}
}

// Check reports whether the TOML file at path is readable and decodes.
// Lookups never fail, so callers that take an explicit configuration
// path use Check up front to surface typos instead of silently
// degrading to the built-in defaults. An empty path is valid.
func Check(path string) error {
	if path == "" {
		return nil
	}
	var tree map[string]any
	if _, err := toml.DecodeFile(path, &tree); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStyle, err, "style configuration %s", path)
	}
	return nil
}

// Reload drops the memoized file contents; the next lookup re-reads the
// file. Use this when the configuration changed on disk mid-process.
func (c *Config) Reload() {
	c.mu.Lock()
	c.tree = nil
	c.loaded = false
	c.mu.Unlock()
}

// ensure loads the file once. Decode failures are swallowed: the file
// tier just stays empty and lookups fall through to the defaults.
func (c *Config) ensure() map[string]any {
	c.mu.RLock()
	if c.loaded {
		tree := c.tree
		c.mu.RUnlock()
		return tree
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		if c.path != "" {
			var tree map[string]any
			if _, err := toml.DecodeFile(c.path, &tree); err == nil {
				c.tree = tree
			}
		}
		c.loaded = true
	}
	return c.tree
}

// Get resolves a nested key path against the configuration file, then
// the built-in emergency defaults, then the caller-supplied default.
func (c *Config) Get(def any, path ...string) any {
	if v, ok := lookup(c.ensure(), path); ok {
		return v
	}
	if v, ok := lookup(emergencyDefaults, path); ok {
		return v
	}
	return def
}

// Node returns the style for a node kind ("component", "control",
// "risk", "cluster").
func (c *Config) Node(kind string) Style {
	return c.styleAt("defaults", kind)
}

// Category returns the style for a category subgraph, falling back to
// the generic category defaults when the category has no entry.
func (c *Config) Category(name string) Style {
	s := c.styleAt("categories", name)
	return mergeStyle(s, c.styleAt("defaults", "category"))
}

// Bucket returns the style for edge style bucket i (0-based).
func (c *Config) Bucket(i int) Style {
	names := [...]string{"0", "1", "2", "3"}
	return c.styleAt("buckets", names[i%len(names)])
}

// Universal returns the style for edges of sources that apply to the
// entire target collection.
func (c *Config) Universal() Style {
	return c.styleAt("defaults", "universal")
}

// Layout returns the spacing parameters.
func (c *Config) Layout() Spacing {
	base, _ := c.Get(defaultAnchorBase, "layout", "anchor_base").(int64)
	if base <= 0 {
		base = defaultAnchorBase
	}
	return Spacing{AnchorBase: int(base)}
}

// styleAt decodes the style record at the given path, merging the file
// tier over the emergency tier field by field.
func (c *Config) styleAt(path ...string) Style {
	fromFile := decodeStyle(c.ensure(), path)
	fallback := decodeStyle(emergencyDefaults, path)
	return mergeStyle(fromFile, fallback)
}

func lookup(tree map[string]any, path []string) (any, bool) {
	if tree == nil || len(path) == 0 {
		return nil, false
	}
	var cur any = tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func decodeStyle(tree map[string]any, path []string) Style {
	v, ok := lookup(tree, path)
	if !ok {
		return Style{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Style{}
	}
	var s Style
	if fill, ok := m["fill"].(string); ok {
		s.Fill = fill
	}
	if stroke, ok := m["stroke"].(string); ok {
		s.Stroke = stroke
	}
	if dash, ok := m["dash"].(string); ok {
		s.Dash = dash
	}
	if color, ok := m["color"].(string); ok {
		s.Color = color
	}
	switch w := m["width"].(type) {
	case float64:
		s.Width = w
	case int64:
		s.Width = float64(w)
	}
	return s
}

// mergeStyle overlays s on top of fallback field by field.
func mergeStyle(s, fallback Style) Style {
	if s.Fill == "" {
		s.Fill = fallback.Fill
	}
	if s.Stroke == "" {
		s.Stroke = fallback.Stroke
	}
	if s.Width == 0 {
		s.Width = fallback.Width
	}
	if s.Dash == "" {
		s.Dash = fallback.Dash
	}
	if s.Color == "" {
		s.Color = fallback.Color
	}
	return s
}
