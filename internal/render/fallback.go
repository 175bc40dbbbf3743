package render

import (
	"html/template"

	"github.com/yanizio/sitebuilder/internal/site"
)

// Placeholder is the visible stand-in for a section whose identifier has no
// renderer.  It names the identifier and, when present, the internal name.
func Placeholder(s *site.Section) template.HTML {
	return placeholder("section-missing", "Component not found", s)
}

// ErrorPlaceholder replaces a section whose renderer failed.
func ErrorPlaceholder(s *site.Section) template.HTML {
	return placeholder("section-error", "Section failed to render", s)
}

func placeholder(class, title string, s *site.Section) template.HTML {
	out := `<div class="` + class + `" role="note"><strong>` + title + `:</strong> <code>` +
		template.HTMLEscapeString(s.Identifier) + `</code>`
	if s.InternalName != "" {
		out += ` <span class="internal-name">(` + template.HTMLEscapeString(s.InternalName) + `)</span>`
	}
	return template.HTML(out + `</div>`)
}
