// Package catalog describes the UI components the assistant may use and
// renders the system prompt that teaches a model the patch format.
package catalog

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
)

// Mode selects the prompt variant.
type Mode string

const (
	// ModeChat mixes markdown prose with patch lines.
	ModeChat Mode = "chat"
	// ModeSpec asks for patch lines only.
	ModeSpec Mode = "spec"
)

//go:embed system_prompt.tmpl
var systemPromptTemplate string

var promptTemplate = template.Must(template.New("system_prompt").Funcs(sprig.TxtFuncMap()).Parse(systemPromptTemplate))

// Prop documents one component property.
type Prop struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Component documents one component type.
type Component struct {
	Name        string
	Description string
	Children    bool
	Props       []Prop
}

// Catalog is an ordered set of components.
type Catalog struct {
	components []Component
	names      *strset.Set
}

// New returns a catalog of the given components. Later duplicates are ignored.
func New(components ...Component) *Catalog {
	c := &Catalog{names: strset.New()}
	for _, component := range components {
		if c.names.Has(component.Name) {
			continue
		}
		c.names.Add(component.Name)
		c.components = append(c.components, component)
	}
	return c
}

// Default returns the chat catalog.
func Default() *Catalog {
	return New(
		Component{
			Name:        "Column",
			Description: "Stacks its children vertically.",
			Children:    true,
			Props: []Prop{
				{Name: "gap", Type: "number", Description: "Blank lines between children."},
			},
		},
		Component{
			Name:        "Paragraph",
			Description: "A block of markdown text.",
			Props: []Prop{
				{Name: "text", Type: "string", Required: true, Description: "The text to show."},
			},
		},
		Component{
			Name:        "Button",
			Description: "A pressable action.",
			Props: []Prop{
				{Name: "label", Type: "string", Required: true, Description: "The button caption."},
				{Name: "action", Type: "string", Description: "Action name, e.g. setState."},
				{Name: "params", Type: "object", Description: "Action parameters, e.g. {\"statePath\":\"/x\",\"value\":1}."},
			},
		},
		Component{
			Name:        "Card",
			Description: "A bordered container.",
			Children:    true,
			Props: []Prop{
				{Name: "title", Type: "string", Description: "Optional title shown at the top."},
			},
		},
		Component{
			Name:        "Heading",
			Description: "A section title.",
			Props: []Prop{
				{Name: "text", Type: "string", Required: true, Description: "The heading text."},
				{Name: "level", Type: "number", Description: "1 to 3, 1 being the largest."},
			},
		},
	)
}

// Has reports whether the catalog knows the component type.
func (c *Catalog) Has(name string) bool {
	return c.names.Has(name)
}

// Component returns the definition of the named component.
func (c *Catalog) Component(name string) (Component, bool) {
	for _, component := range c.components {
		if component.Name == name {
			return component, true
		}
	}
	return Component{}, false
}

// Components returns the components in declaration order.
func (c *Catalog) Components() []Component {
	return append([]Component(nil), c.components...)
}

// Names returns the component names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.components))
	for _, component := range c.components {
		names = append(names, component.Name)
	}
	return names
}

// Prompt renders the system prompt for the given mode.
func (c *Catalog) Prompt(mode Mode) (string, error) {
	if mode != ModeChat && mode != ModeSpec {
		return "", errors.Errorf("unknown prompt mode (%s)", mode)
	}
	data := map[string]any{
		"Mode":       string(mode),
		"Names":      c.Names(),
		"Components": c.components,
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "executing prompt template")
	}
	return buf.String(), nil
}
