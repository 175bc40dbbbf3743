// internal/section/registry.go
//
// Section registry and lookup helpers.
//
// A **Renderer** turns one Section into HTML for a given Mode.  Each
// renderer family (one per site template, e.g. "restaurant-modern") lives
// under `components/<family>` and fills a Builder during start-up:
//
//	b := section.NewBuilder()
//	b.Register("restaurant-modern-hero-01", hero)
//	b.Alias("hero-banner", "restaurant-modern-hero-01")
//	reg, err := b.Build()
//
// Build returns an immutable *Registry.  Lookup never fails loudly: an
// unknown identifier is a normal answer, and the template renderer turns it
// into a fallback placeholder.
//
// Notes
// -----
//   - A built Registry is never written again, so reads need no lock and
//     any number of render passes may share it.
//   - Aliases resolve at build time; Lookup is one map read.
//   - Oxford commas, two spaces after periods.
package section

import (
	"errors"
	"fmt"
	"html/template"
	"sort"

	"github.com/yanizio/sitebuilder/internal/site"
)

// Props is what a renderer receives for one Section.
type Props struct {
	Section *site.Section
	Mode    Mode
	Site    *site.Projection // may be nil when rendering a lone page
}

// Renderer represents a view fragment for one section identifier.
//
// Render MUST be concurrency-safe; multiple goroutines may call it.  Errors
// are returned, not written, so the template renderer can decide how to
// surface the failure.
type Renderer interface {
	Render(Props) (template.HTML, error)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(Props) (template.HTML, error)

func (f RendererFunc) Render(p Props) (template.HTML, error) { return f(p) }

//
// Registry
//

// Registry maps identifier strings to renderers.  Zero value and nil are
// valid empty registries.
type Registry struct {
	entries map[string]Renderer
}

// Lookup returns the renderer for identifier or (nil, false).
func (r *Registry) Lookup(identifier string) (Renderer, bool) {
	if r == nil {
		return nil, false
	}
	rn, ok := r.entries[identifier]
	return rn, ok
}

// Has reports whether identifier resolves.
func (r *Registry) Has(identifier string) bool {
	_, ok := r.Lookup(identifier)
	return ok
}

// Identifiers returns every resolvable identifier, aliases included, sorted.
func (r *Registry) Identifiers() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of resolvable identifiers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

//
// Builder
//

var (
	ErrEmptyIdentifier     = errors.New("section: empty identifier")
	ErrDuplicateIdentifier = errors.New("section: duplicate identifier")
	ErrUnknownAliasTarget  = errors.New("section: alias target not registered")
)

// Builder accumulates registrations.  Not safe for concurrent use; fill it
// from one goroutine during start-up.
type Builder struct {
	entries map[string]Renderer
	aliases [][2]string // alias, target in call order
	errs    []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[string]Renderer)}
}

// Register binds identifier to rn.  Errors surface from Build.
func (b *Builder) Register(identifier string, rn Renderer) *Builder {
	switch {
	case identifier == "":
		b.errs = append(b.errs, ErrEmptyIdentifier)
	case rn == nil:
		b.errs = append(b.errs, fmt.Errorf("section: nil renderer for %q", identifier))
	case b.entries[identifier] != nil:
		b.errs = append(b.errs, fmt.Errorf("%w %q", ErrDuplicateIdentifier, identifier))
	default:
		b.entries[identifier] = rn
	}
	return b
}

// Alias makes alias resolve to the same renderer as target.  target may be
// registered later in the same Builder.
func (b *Builder) Alias(alias, target string) *Builder {
	if alias == "" {
		b.errs = append(b.errs, ErrEmptyIdentifier)
		return b
	}
	b.aliases = append(b.aliases, [2]string{alias, target})
	return b
}

// Build validates the registrations and freezes them.
func (b *Builder) Build() (*Registry, error) {
	out := make(map[string]Renderer, len(b.entries)+len(b.aliases))
	for id, rn := range b.entries {
		out[id] = rn
	}
	errs := append([]error(nil), b.errs...)
	for _, a := range b.aliases {
		alias, target := a[0], a[1]
		rn, ok := b.entries[target]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q → %q", ErrUnknownAliasTarget, alias, target))
			continue
		}
		if _, taken := out[alias]; taken {
			errs = append(errs, fmt.Errorf("%w %q", ErrDuplicateIdentifier, alias))
			continue
		}
		out[alias] = rn
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Registry{entries: out}, nil
}

// MustBuild panics on a registration error.  Intended for init-time wiring
// where a bad table is a programming error.
func (b *Builder) MustBuild() *Registry {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
