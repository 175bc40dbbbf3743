// components/restaurantmodern/restaurantmodern.go
//
// Restaurant Modern family – the renderer set behind the
// "restaurant-modern" site template.
//
// Context
// -------
// Each section template ships under a versioned identifier
// (`restaurant-modern-<kind>-NN`).  Older projections still carry the
// generic names the builder used before versioning, so every versioned
// identifier also gets its legacy alias.
//
// Notes
// -----
// • Adding a new version means a new template and a new row below; the
//   alias keeps pointing at whichever version should serve legacy data.
package restaurantmodern

import (
	"embed"

	"github.com/yanizio/sitebuilder/internal/component"
	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/theme"
)

// Name is the site_template_key served by this family.
const Name = "restaurant-modern"

//go:embed templates/*.html
var templates embed.FS

var _ component.Family = (*Family)(nil)

// Family implements component.Family.
type Family struct{}

// sections maps versioned identifier → template name, legacy alias.
var sections = []struct {
	id, tpl, alias string
}{
	{"restaurant-modern-hero-01", "hero", "hero-banner"},
	{"restaurant-modern-menu-01", "menu", "menu-list"},
	{"restaurant-modern-about-01", "about", "text-block"},
	{"restaurant-modern-contact-01", "contact", "contact-info"},
	{"restaurant-modern-cta-01", "cta", "cta-banner"},
}

func (Family) Name() string { return Name }

func (Family) Sections(b *section.Builder) error {
	th, err := theme.Load(Name, templates, "templates")
	if err != nil {
		return err
	}
	for _, s := range sections {
		rn, err := th.Section(s.tpl)
		if err != nil {
			return err
		}
		b.Register(s.id, rn)
		if s.alias != "" {
			b.Alias(s.alias, s.id)
		}
	}
	return nil
}

func init() { component.Register(Family{}) }
