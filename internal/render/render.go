// internal/render/render.go
//
// Template renderer: Site Projection → ordered HTML blocks.
//
// Context
// -------
// For every Section on a page, in ascending Order, the renderer resolves a
// section.Renderer through the family registry chosen by the projection's
// site_template_key and calls it with the Section and the render Mode.  A
// missing renderer, a renderer error, or a renderer panic never aborts the
// page: the section is replaced by a placeholder and the rest renders.
//
// Public helpers
// --------------
//   - RenderSections – low level, one registry, one slice of sections.
//   - RenderPage     – picks the family registry for a projection.
//   - RenderSite     – resolves a page slug (home fallback) first.
//   - RenderSection  – one section, used by the live preview to push a
//     fresh fragment for a draft.
//
// Notes
// -----
//   - Pure with respect to the network.  The same input produces the same
//     output, byte for byte.
//   - Oxford commas, two spaces after periods.
package render

import (
	"errors"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/metrics"
	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/site"
)

var (
	// ErrPageNotFound means the projection has pages but none matches.
	ErrPageNotFound = errors.New("render: page not found")
	// ErrNoPages means the projection loaded fine but has zero pages.
	ErrNoPages = errors.New("render: site has no pages")
)

// Block is the output for one Section.
type Block struct {
	SectionID  site.ID
	Identifier string
	HTML       template.HTML // already wrapped in <section data-section-id>
	Fallback   bool          // placeholder emitted instead of a renderer
}

// PageView is a fully rendered page, ready for the layout.
type PageView struct {
	Site   *site.Projection
	Page   *site.Page
	Mode   section.Mode
	Blocks []Block
}

// Renderer holds the family catalog.  Safe for concurrent use.
type Renderer struct {
	catalog *section.Catalog
	log     *zap.Logger
}

// New returns a Renderer.  A nil logger uses zap.L().
func New(cat *section.Catalog, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.L()
	}
	return &Renderer{catalog: cat, log: log}
}

// Registry returns the family registry for a projection.
func (r *Renderer) Registry(p *site.Projection) *section.Registry {
	key := ""
	if p != nil {
		key = p.TemplateKey
	}
	reg, _ := r.catalog.For(key)
	return reg
}

// RenderSite resolves slug (home fallback for "") and renders that page.
func (r *Renderer) RenderSite(p *site.Projection, slug string, mode section.Mode) (*PageView, error) {
	if p.IsEmpty() {
		return nil, ErrNoPages
	}
	page, ok := p.PageBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPageNotFound, slug)
	}
	return r.RenderPage(p, page, mode), nil
}

// RenderPage renders one page of p.
func (r *Renderer) RenderPage(p *site.Projection, page *site.Page, mode section.Mode) *PageView {
	return &PageView{
		Site:   p,
		Page:   page,
		Mode:   mode,
		Blocks: r.RenderSections(r.Registry(p), page.Sections, mode, p),
	}
}

// RenderSection renders a single section with p's family.
func (r *Renderer) RenderSection(p *site.Projection, s *site.Section, mode section.Mode) Block {
	return r.renderOne(r.Registry(p), s, mode, p)
}

// RenderSections renders sections in ascending Order, fetch order on ties.
func (r *Renderer) RenderSections(reg *section.Registry, sections []site.Section, mode section.Mode, p *site.Projection) []Block {
	pg := site.Page{Sections: sections}
	sorted := pg.SortedSections()

	out := make([]Block, 0, len(sorted))
	for i := range sorted {
		out = append(out, r.renderOne(reg, &sorted[i], mode, p))
	}
	return out
}

// renderOne never panics and never returns an error.
func (r *Renderer) renderOne(reg *section.Registry, s *site.Section, mode section.Mode, p *site.Projection) (b Block) {
	b = Block{SectionID: s.ID, Identifier: s.Identifier}
	metrics.SectionsRenderedTotal.WithLabelValues(string(mode)).Inc()

	rn, ok := reg.Lookup(s.Identifier)
	if !ok {
		metrics.SectionFallbackTotal.WithLabelValues("unresolved").Inc()
		b.HTML = wrap(s, Placeholder(s))
		b.Fallback = true
		return b
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("section renderer panic",
				zap.String("identifier", s.Identifier),
				zap.String("section_id", s.ID.String()),
				zap.Any("panic", rec))
			metrics.SectionFallbackTotal.WithLabelValues("error").Inc()
			b.HTML = wrap(s, ErrorPlaceholder(s))
			b.Fallback = true
		}
	}()

	html, err := rn.Render(section.Props{Section: s, Mode: mode, Site: p})
	if err != nil {
		r.log.Warn("section render failed",
			zap.String("identifier", s.Identifier),
			zap.String("section_id", s.ID.String()),
			zap.Error(err))
		metrics.SectionFallbackTotal.WithLabelValues("error").Inc()
		b.HTML = wrap(s, ErrorPlaceholder(s))
		b.Fallback = true
		return b
	}
	b.HTML = wrap(s, html)
	return b
}

// wrap tags the fragment so the preview client can swap it in place.
func wrap(s *site.Section, inner template.HTML) template.HTML {
	return template.HTML(fmt.Sprintf(`<section data-section-id="%s" data-identifier="%s">%s</section>`,
		template.HTMLEscapeString(s.ID.String()),
		template.HTMLEscapeString(s.Identifier),
		inner))
}
