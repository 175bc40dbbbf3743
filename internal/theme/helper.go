//
//  internal/theme/helper.go
//
//  Template functions shared by every section template.  The mode-aware
//  helpers are the only place where public and preview output differ:
//  in preview and dashboard modes links become inert so clicking inside
//  the editor never navigates away.
//

package theme

import (
	"html/template"
	"strings"

	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/site"
)

// FuncMap returns the global template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		// Field helpers
		"field": func(s *site.Section, key string) string {
			if s == nil {
				return ""
			}
			return s.Value(key)
		},
		"fieldOr": func(s *site.Section, key, def string) string {
			if s == nil {
				return def
			}
			if v := s.Value(key); v != "" {
				return v
			}
			return def
		},
		"lines": lines,
		"pair":  pair,

		// Mode helpers
		"cta":  cta,
		"href": href,
	}
}

// cta renders a call-to-action.  Live modes get an anchor, the others an
// inert button that looks the same.
func cta(mode section.Mode, url, label string) template.HTML {
	label = template.HTMLEscapeString(label)
	if !mode.Live() {
		return template.HTML(`<button type="button" class="cta" disabled aria-disabled="true">` +
			label + `</button>`)
	}
	return template.HTML(`<a class="cta" href="` + template.HTMLEscapeString(safeURL(url)) + `">` +
		label + `</a>`)
}

// href returns url in live modes and "#" otherwise.
func href(mode section.Mode, url string) string {
	if !mode.Live() {
		return "#"
	}
	return safeURL(url)
}

// safeURL allows relative, http(s), mailto, and tel targets only.
func safeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return "#"
	}
	lower := strings.ToLower(u)
	for _, p := range []string{"http://", "https://", "mailto:", "tel:", "/", "#", "?"} {
		if strings.HasPrefix(lower, p) {
			return u
		}
	}
	if !strings.Contains(lower, ":") {
		return u
	}
	return "#"
}

// lines splits multi-line field values into trimmed, non-empty rows.
func lines(v string) []string {
	var out []string
	for _, l := range strings.Split(v, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// pair splits "Margherita | 12.50" into two cells.  Missing halves are "".
func pair(row string) [2]string {
	name, price, _ := strings.Cut(row, "|")
	return [2]string{strings.TrimSpace(name), strings.TrimSpace(price)}
}
