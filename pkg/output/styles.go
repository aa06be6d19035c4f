package output

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultStyles []byte

// ColorDef is an adaptive color definition
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition. Foreground and Background name an entry
// of the colors table or hold a literal color.
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// StylesConfig is the layout of a styles file
type StylesConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// parseStyles builds the named styles of data against renderer r
func parseStyles(r *lipgloss.Renderer, data []byte) (map[string]lipgloss.Style, error) {
	var cfg StylesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}

	color := func(name string) lipgloss.TerminalColor {
		if c, ok := cfg.Colors[name]; ok {
			return lipgloss.AdaptiveColor{Light: c.Light, Dark: c.Dark}
		}
		return lipgloss.Color(name)
	}

	styles := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		s := r.NewStyle().
			Bold(def.Bold).
			Italic(def.Italic).
			Underline(def.Underline)
		if def.Foreground != "" {
			s = s.Foreground(color(def.Foreground))
		}
		if def.Background != "" {
			s = s.Background(color(def.Background))
		}
		styles[name] = s
	}
	return styles, nil
}

// LoadStyles overrides the renderer's styles with the ones in path. Names
// missing from the file keep their built-in style.
func (r *Renderer) LoadStyles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read styles: %w", err)
	}
	styles, err := parseStyles(r.lg, data)
	if err != nil {
		return err
	}
	for name, s := range styles {
		r.styles[name] = s
	}
	return nil
}
