package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/routing"
	"github.com/yanizio/sitebuilder/internal/site"
)

// FetchSite loads the public projection of one tenant.  A missing slug and
// an unreachable API both report ErrMissingProjection; NotFound tells them
// apart.  A projection with zero pages is returned as-is, not as an error.
func (c *Client) FetchSite(ctx context.Context, slug string) (*site.Projection, error) {
	if slug == "" {
		return nil, &Error{Kind: ErrMissingProjection, Op: "fetch site", Status: http.StatusNotFound, Detail: "empty slug"}
	}
	var p site.Projection
	if err := c.doJSON(ctx, ErrMissingProjection, "fetch site", http.MethodGet,
		c.endpoint(nil, "sites", slug, "public"), nil, &p); err != nil {
		return nil, err
	}
	if p.Slug == "" {
		p.Slug = slug
	}
	if err := p.Validate(); err != nil {
		// Duplicate keys make field edits ambiguous but the site can still
		// be shown.
		c.log.Warn("site projection failed validation", zap.String("site", slug), zap.Error(err))
	}
	return &p, nil
}

// FetchPage loads one page snapshot.  When the API call fails it falls back
// to the last good snapshot for the same (slug, locale), then to the local
// default page of that slug after MakeSlug normalisation.  It errors only when no fallback exists.
func (c *Client) FetchPage(ctx context.Context, slug, locale string) (*site.Page, error) {
	var q url.Values
	if locale != "" {
		q = url.Values{"locale": {locale}}
	}
	key := slug + "\x00" + locale

	var pg site.Page
	err := c.doJSON(ctx, ErrPageUnavailable, "fetch page", http.MethodGet,
		c.endpoint(q, "pages", slug), nil, &pg)
	if err == nil {
		c.pages.Add(key, pg)
		return &pg, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	if cached, ok := c.pages.Get(key); ok {
		c.log.Warn("page fetch failed, serving last good snapshot",
			zap.String("page", slug), zap.String("locale", locale), zap.Error(err))
		return &cached, nil
	}
	// Default pages are keyed by normalised slug (see DecodeDefaultPages).
	if def, ok := c.defaults[routing.MakeSlug(slug)]; ok {
		c.log.Warn("page fetch failed, serving default page",
			zap.String("page", slug), zap.String("locale", locale), zap.Error(err))
		return &def, nil
	}
	return nil, fmt.Errorf("page %q: %w", slug, err)
}
