// internal/component/registry.go
//
// Renderer family registry (cycle-free).
//
// Each concrete family lives under components/<name> and calls
// component.Register() in an init() function.  At start-up cmd/web calls
// Catalog(), which gives every family a fresh section.Builder, freezes the
// result, and returns an immutable section.Catalog keyed by site template
// key.  The family named by FallbackFamily serves projections whose
// template key matches nothing.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yanizio/sitebuilder/internal/section"
)

// FallbackFamily serves unknown site template keys.
const FallbackFamily = "basic"

// Family contract.
//
// Name() must equal the site_template_key the family renders.  Sections()
// registers identifiers and aliases; it must not retain the builder.
type Family interface {
	Name() string
	Sections(*section.Builder) error
}

var (
	mu       sync.RWMutex
	registry = map[string]Family{}
)

// Register is invoked from family init() functions.  A duplicate name
// replaces the earlier family.
func Register(f Family) {
	mu.Lock()
	registry[f.Name()] = f
	mu.Unlock()
}

// Names returns registered family names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Catalog builds one registry per family.  Any registration error aborts
// start-up.
func Catalog() (*section.Catalog, error) {
	mu.RLock()
	defer mu.RUnlock()

	families := make(map[string]*section.Registry, len(registry))
	for name, f := range registry {
		b := section.NewBuilder()
		if err := f.Sections(b); err != nil {
			return nil, fmt.Errorf("family %s: %w", name, err)
		}
		reg, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", name, err)
		}
		families[name] = reg
	}
	return section.NewCatalog(families, families[FallbackFamily]), nil
}
