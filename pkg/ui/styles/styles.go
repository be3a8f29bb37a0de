// Package styles holds the semantic style registry for pez's terminal
// output. Styles are defined in an embedded YAML file and compiled into
// lipgloss adaptive styles, so renderers refer to names like "Success"
// instead of hardcoding colors.
package styles

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color pair.
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is one named style in the YAML document. Foreground and
// Background reference color names, not literal values.
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
	Width      int    `yaml:"width,omitempty"`
	Align      string `yaml:"align,omitempty"`
}

// Config is the parsed styles document.
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// registry maps semantic names to compiled styles.
var registry map[string]lipgloss.Style

//go:embed styles.yaml
var embeddedStyles []byte

func init() {
	if err := Load(embeddedStyles); err != nil {
		// The embedded document is authored alongside this package, so
		// a parse failure is a programming error. Still, renderers must
		// keep working, just without styling.
		registry = make(map[string]lipgloss.Style)
	}
}

// Load replaces the registry with the styles in a YAML document.
func Load(data []byte) error {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse styles document: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	compiled := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		compiled[name] = build(def, colors)
	}
	registry = compiled
	return nil
}

func build(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle()
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := colors[def.Background]; ok {
		style = style.Background(color)
	}
	if def.Width > 0 {
		style = style.Width(def.Width)
	}
	switch def.Align {
	case "left":
		style = style.Align(lipgloss.Left)
	case "center":
		style = style.Align(lipgloss.Center)
	case "right":
		style = style.Align(lipgloss.Right)
	}
	return style
}

// Get returns the named style, or an unstyled default for unknown names.
func Get(name string) lipgloss.Style {
	if style, ok := registry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Names lists the registered style names. Used by tests to keep the YAML
// document and the renderers in sync.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
