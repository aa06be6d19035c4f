package output

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotmod/pkg/engine"
	"github.com/arthur-debert/dotmod/pkg/logging"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Format selects how results are written
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or yaml)", s)
	}
}

// Renderer writes engine results. Text output goes through templates whose
// style function applies lipgloss styles; color is dropped when the writer
// is not a terminal, NO_COLOR is set, or noColor is requested.
type Renderer struct {
	w         io.Writer
	format    Format
	lg        *lipgloss.Renderer
	styles    map[string]lipgloss.Style
	templates *template.Template
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer, format Format, noColor bool) (*Renderer, error) {
	log := logging.GetLogger("output")

	lg := lipgloss.NewRenderer(w)
	color := colorEnabled(w, noColor)
	if !color {
		lg.SetColorProfile(termenv.Ascii)
		lg.SetHasDarkBackground(true)
	}
	log.Debug().
		Bool("color", color).
		Str("format", string(format)).
		Msg("creating renderer")

	styles, err := parseStyles(lg, defaultStyles)
	if err != nil {
		return nil, err
	}

	r := &Renderer{w: w, format: format, lg: lg, styles: styles}
	r.templates, err = template.New("output").Funcs(template.FuncMap{
		"style": r.style,
		"pad":   pad,
		"join":  strings.Join,
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return r, nil
}

func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// style renders v with the named style, or plainly when there is none
func (r *Renderer) style(name string, v interface{}) string {
	text := fmt.Sprint(v)
	s, ok := r.styles[name]
	if !ok {
		return text
	}
	return s.Render(text)
}

// pad right-pads s to width visible cells
func pad(width int, s string) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func (r *Renderer) render(name string, data interface{}) error {
	if r.format == FormatYAML {
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	_, err := r.w.Write(buf.Bytes())
	return err
}

// RenderResults writes the per-module results of enable, disable or update
func (r *Renderer) RenderResults(results []engine.ModuleResult) error {
	return r.render("results", NewResultViews(results))
}

// RenderModules writes the rows of list
func (r *Renderer) RenderModules(modules []engine.ModuleStatus) error {
	return r.render("modules", NewModuleViews(modules))
}

// RenderOwned writes owned paths and their live status
func (r *Renderer) RenderOwned(owned []engine.OwnedPath) error {
	return r.render("owned", NewOwnedViews(owned))
}

// RenderDigests writes named source digests
func (r *Renderer) RenderDigests(digests []engine.SourceDigest) error {
	return r.render("digests", NewDigestViews(digests))
}

// RenderError writes an error message
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.w, "%s %s\n", r.style("Error", "Error:"), err)
	return werr
}

// RenderMessage writes a message with the named style. YAML output
// carries no messages.
func (r *Renderer) RenderMessage(style, message string) error {
	if r.format == FormatYAML {
		return nil
	}
	_, err := fmt.Fprintln(r.w, r.style(style, message))
	return err
}
