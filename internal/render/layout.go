package render

import (
	"html/template"
	"io"

	"github.com/yanizio/sitebuilder/internal/head"
	"github.com/yanizio/sitebuilder/internal/routing"
	"github.com/yanizio/sitebuilder/internal/site"
)

var layout = template.Must(template.New("layout").Parse(`<!doctype html>
<html lang="{{ .Lang }}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{ .Head }}
</head>
<body class="site mode-{{ .View.Mode }}" data-site="{{ .View.Site.Slug }}">
{{- if gt (len .Nav) 1 }}
<nav class="site-nav"><ul>
{{- range .Nav }}<li{{ if .Current }} class="current"{{ end }}>{{ if $.Live }}<a href="{{ .Href }}">{{ .Title }}</a>{{ else }}<span>{{ .Title }}</span>{{ end }}</li>{{ end }}
</ul></nav>
{{- end }}
<main>
{{- range .View.Blocks }}
{{ .HTML }}
{{- end }}
</main>
</body>
</html>
`))

// NavItem is one entry of the generated page navigation.
type NavItem struct {
	Title   string
	Href    string
	Current bool
}

// Nav lists the pages of the site in fetch order.  Hrefs are rooted at base,
// with the home page at base itself.
func Nav(p *site.Projection, current *site.Page, base string) []NavItem {
	home, _ := p.HomePage()
	out := make([]NavItem, 0, len(p.Pages))
	for i := range p.Pages {
		pg := &p.Pages[i]
		h := routing.BuildPath(base, pg.Slug)
		if home != nil && pg.Slug == home.Slug {
			h = routing.BuildPath(base, "")
		}
		title := pg.Title
		if title == "" {
			title = pg.Slug
		}
		out = append(out, NavItem{Title: title, Href: h, Current: current != nil && pg.Slug == current.Slug})
	}
	return out
}

// PagePath is the URL of page under base, following the same rule as Nav.
func PagePath(p *site.Projection, page *site.Page, base string) string {
	if page == nil {
		return routing.BuildPath(base, "")
	}
	if home, ok := p.HomePage(); ok && home.Slug == page.Slug {
		return routing.BuildPath(base, "")
	}
	return routing.BuildPath(base, page.Slug)
}

// Document writes the full HTML page for v.  hb may be nil.
func Document(w io.Writer, v *PageView, hb *head.Builder, base, lang string) error {
	if hb == nil {
		hb = head.New()
	}
	if lang == "" {
		lang = "en"
	}
	return layout.Execute(w, map[string]any{
		"View": v,
		"Head": hb.HTML(),
		"Nav":  Nav(v.Site, v.Page, base),
		"Live": v.Mode.Live(),
		"Lang": lang,
	})
}
