// internal/routing/slug.go
//
// Slug and path helpers.
//
// • MakeSlug(title) ─ converts arbitrary text into a URL-safe slug restricted
//   to ASCII a-z, 0-9 and “-”.  Used for the fallback page slugs and any
//   identifier that ends up in a URL path segment.
// • BuildPath(parent, slug) ─ joins parent path + slug with a single “/” and
//   guarantees exactly one leading slash.  Used for generated site
//   navigation.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.
// 3. Trim leading / trailing “-”.
// 4. If the result is empty, return fallback (defaults to "item").
// 5. Cap at MaxSlugLen bytes, never ending on “-”.

package routing

import (
	"strings"
)

// MaxSlugLen caps generated slugs.
const MaxSlugLen = 100

// MakeSlug converts title → lower-kebab ASCII.
func MakeSlug(title string) string { return MakeSlugOr(title, "item") }

// MakeSlugOr is MakeSlug with a caller-chosen fallback for empty results.
func MakeSlugOr(title, fallback string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return fallback
	}
	if len(slug) > MaxSlugLen {
		slug = strings.TrimRight(slug[:MaxSlugLen], "-")
	}
	return slug
}

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}
