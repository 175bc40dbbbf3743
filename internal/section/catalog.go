// internal/section/catalog.go
//
// A Catalog groups registries by site template key.  A Site Projection names
// exactly one `site_template_key`; the catalog hands back that family's
// registry, or the fallback family when the key is unknown.  An unknown key
// is a valid projection, not an error.
package section

import "sort"

// Catalog is immutable once built by NewCatalog.
type Catalog struct {
	families map[string]*Registry
	fallback *Registry
}

// NewCatalog copies families.  fallback may be nil.
func NewCatalog(families map[string]*Registry, fallback *Registry) *Catalog {
	m := make(map[string]*Registry, len(families))
	for k, v := range families {
		m[k] = v
	}
	return &Catalog{families: m, fallback: fallback}
}

// For returns the registry for templateKey.  The bool is false when the
// fallback was used.
func (c *Catalog) For(templateKey string) (*Registry, bool) {
	if c == nil {
		return nil, false
	}
	if r, ok := c.families[templateKey]; ok {
		return r, true
	}
	return c.fallback, false
}

// Families lists registered template keys, sorted.
func (c *Catalog) Families() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.families))
	for k := range c.families {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
