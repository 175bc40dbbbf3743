// internal/head/builder.go
//
// The Builder collects everything that should appear inside a rendered
// page's <head> element.  It is scoped to a single render call.  Handlers
// push tags into the builder, then the page layout emits them in a fixed
// order: title, metas, links, scripts.
//
// Features
// --------
//   - SetTitle            – single <title> tag (last call wins).
//   - Meta, Link, Script  – raw tags with deduplication.
//   - MetaName, Canonical – escaped convenience wrappers.
//   - HTML                – the whole head body as template.HTML.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use, though one goroutine per render is
// the normal pattern.
type Builder struct {
	mu sync.Mutex

	title   string
	metas   []string
	links   []string
	scripts []string

	seen map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

func (b *Builder) Meta(tag string)   { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)   { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) Script(tag string) { b.add("script:"+tag, &b.scripts, tag) }

// MetaName adds <meta name=... content=...> with both values escaped.
func (b *Builder) MetaName(name, content string) {
	b.Meta(`<meta name="` + template.HTMLEscapeString(name) +
		`" content="` + template.HTMLEscapeString(content) + `">`)
}

// Canonical adds the canonical link for the page.
func (b *Builder) Canonical(href string) {
	b.Link(`<link rel="canonical" href="` + template.HTMLEscapeString(href) + `">`)
}

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// HTML concatenates title, metas, links, and scripts.
func (b *Builder) HTML() template.HTML {
	title := b.Title()
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	sb.WriteString(string(title))
	for _, group := range [][]string{b.metas, b.links, b.scripts} {
		for _, tag := range group {
			sb.WriteString(tag)
		}
	}
	return template.HTML(sb.String())
}
