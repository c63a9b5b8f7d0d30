// Package render draws a compiled spec in the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/malonaz/specchat/internal/catalog"
	"github.com/malonaz/specchat/internal/markdown"
	"github.com/malonaz/specchat/internal/spec"
)

// DefaultMaxDepth bounds how deep the element graph is walked.
const DefaultMaxDepth = 32

var (
	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#F59E0B")
	borderColor  = lipgloss.Color("#4B5563")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)
)

// Renderer turns specs into terminal text.
type Renderer struct {
	catalog  *catalog.Catalog
	markdown *markdown.Renderer
	maxDepth int
}

// New returns a renderer for the components of c. Paragraph text goes through
// md when it is not nil.
func New(c *catalog.Catalog, md *markdown.Renderer) *Renderer {
	return &Renderer{catalog: c, markdown: md, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth returns r with a different depth bound.
func (r *Renderer) WithMaxDepth(depth int) *Renderer {
	clone := *r
	clone.maxDepth = depth
	return &clone
}

// Render draws s from its root. Unknown component types and dangling child
// ids are skipped. An element already being drawn is not entered again.
func (r *Renderer) Render(s *spec.Spec) string {
	if s == nil || s.Root == "" {
		return ""
	}
	w := &walk{Renderer: r, spec: s, visiting: map[string]bool{}}
	out, _ := w.element(s.Root, 0)
	return out
}

type walk struct {
	*Renderer
	spec     *spec.Spec
	visiting map[string]bool
}

func (w *walk) element(id string, depth int) (string, bool) {
	element, ok := w.spec.Element(id)
	if !ok || element == nil || !w.catalog.Has(element.Type) {
		return "", false
	}
	if w.visiting[id] || depth >= w.maxDepth {
		return "", false
	}
	w.visiting[id] = true
	defer delete(w.visiting, id)

	props := element.Props
	switch element.Type {
	case "Column":
		gap := int(numberProp(props, "gap"))
		return strings.Join(w.children(element, depth), strings.Repeat("\n", max(gap, 0)+1)), true

	case "Card":
		var lines []string
		if title := stringProp(props, "title"); title != "" {
			lines = append(lines, cardTitleStyle.Render(title))
		}
		lines = append(lines, w.children(element, depth)...)
		return cardStyle.Render(strings.Join(lines, "\n")), true

	case "Heading":
		text := stringProp(props, "text")
		if numberProp(props, "level") <= 1 {
			text = strings.ToUpper(text)
		}
		return headingStyle.Render(text), true

	case "Paragraph":
		text := stringProp(props, "text")
		if w.markdown != nil {
			return w.markdown.ToMarkdown(text), true
		}
		return text, true

	case "Button":
		return buttonStyle.Render("[ " + stringProp(props, "label") + " ]"), true

	default:
		// Known to the catalog but not drawable: draw its children.
		return strings.Join(w.children(element, depth), "\n"), true
	}
}

func (w *walk) children(element *spec.Element, depth int) []string {
	var out []string
	for _, child := range element.Children {
		if rendered, ok := w.element(child, depth+1); ok {
			out = append(out, rendered)
		}
	}
	return out
}

func stringProp(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func numberProp(props map[string]any, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}
