// components/basic/basic.go
//
// Basic family – generic hero, text, and call-to-action sections.  Serves
// as the fallback for projections whose site_template_key has no family.
package basic

import (
	"embed"

	"github.com/yanizio/sitebuilder/internal/component"
	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/theme"
)

//go:embed templates/*.html
var templates embed.FS

// compile-time assertion
var _ component.Family = (*Family)(nil)

// Family implements component.Family.
type Family struct{}

func (Family) Name() string { return component.FallbackFamily }

func (Family) Sections(b *section.Builder) error {
	th, err := theme.Load(component.FallbackFamily, templates, "templates")
	if err != nil {
		return err
	}
	for id, tpl := range map[string]string{
		"hero-banner": "hero",
		"text-block":  "text",
		"cta-banner":  "cta",
	} {
		rn, err := th.Section(tpl)
		if err != nil {
			return err
		}
		b.Register(id, rn)
	}
	return nil
}

func init() { component.Register(Family{}) }
