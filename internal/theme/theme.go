// Package theme holds the data structures that describe one renderer
// family.  A Theme combines the site template key (for example,
// “restaurant-modern”) with its parsed section templates.
//
// Each section template is a `{{ define "<name>" }}` block.  Theme.Section
// wraps one of them as a section.Renderer so component packages can register
// it under one or more identifiers.
package theme

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/site"
)

// Theme is returned by Load once all templates are parsed.
type Theme struct {
	Name      string
	Templates *template.Template
}

// New wraps an already parsed template set.
func New(name string, tpl *template.Template) *Theme {
	return &Theme{Name: name, Templates: tpl}
}

// Data is the dot value of every section template.
type Data struct {
	Section *site.Section
	Mode    section.Mode
	Site    *site.Projection
}

// Live is a template shortcut for .Mode.Live.
func (d Data) Live() bool { return d.Mode.Live() }

// Section returns a renderer executing the named template.  It fails at
// wiring time, not render time, when the template does not exist.
func (t *Theme) Section(name string) (section.Renderer, error) {
	tpl := t.Templates.Lookup(name)
	if tpl == nil {
		return nil, fmt.Errorf("theme %s: template %q not found", t.Name, name)
	}
	return section.RendererFunc(func(p section.Props) (template.HTML, error) {
		var buf bytes.Buffer
		if err := tpl.Execute(&buf, Data{
			Section: p.Section,
			Mode:    p.Mode,
			Site:    p.Site,
		}); err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil
	}), nil
}

// MustSection is Section for init-time tables.
func (t *Theme) MustSection(name string) section.Renderer {
	rn, err := t.Section(name)
	if err != nil {
		panic(err)
	}
	return rn
}
