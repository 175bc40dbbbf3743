package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/api"
	"github.com/yanizio/sitebuilder/internal/head"
	"github.com/yanizio/sitebuilder/internal/render"
	"github.com/yanizio/sitebuilder/internal/requestinfo"
	"github.com/yanizio/sitebuilder/internal/routing"
	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/site"
)

// publicPage renders /s/{site}[/{page}] in public mode.
func (s *Server) publicPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "site")
	s.renderProjection(w, r, slug, chi.URLParam(r, "page"), section.ModePublic,
		routing.BuildPath("/s", slug))
}

// standalonePage renders a single page snapshot with the default family.
// The builder API may be down; FetchPage then serves the last good or the
// built-in default copy.
func (s *Server) standalonePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "page")
	lang := requestinfo.LangOr(r.Context(), "")

	pg, err := s.d.Backend.FetchPage(r.Context(), slug, lang)
	if err != nil {
		s.log.Warn("standalone page unavailable", zap.String("page", slug), zap.Error(err))
		statusPage(w, http.StatusNotFound, "Page not found", "This page does not exist.")
		return
	}
	p := &site.Projection{Slug: slug, Pages: []site.Page{*pg}}
	view := s.d.Renderer.RenderPage(p, &p.Pages[0], section.ModePublic)
	s.writeDocument(w, r, view, routing.BuildPath("/pages", pg.Slug))
}

// renderProjection is shared by the public and preview pages.
func (s *Server) renderProjection(w http.ResponseWriter, r *http.Request, slug, page string, mode section.Mode, base string) {
	p, err := s.d.Projections.Get(r.Context(), slug)
	if err != nil {
		if api.NotFound(err) {
			statusPage(w, http.StatusNotFound, "Site not found", "There is no site at this address.")
			return
		}
		s.log.Warn("projection unavailable", zap.String("site", slug), zap.Error(err))
		statusPage(w, http.StatusServiceUnavailable, "Site unavailable", "This site cannot be shown right now.  Please try again shortly.")
		return
	}

	view, err := s.d.Renderer.RenderSite(p, page, mode)
	switch {
	case errors.Is(err, render.ErrNoPages):
		name := p.Name
		if name == "" {
			name = slug
		}
		statusPage(w, http.StatusOK, name, "No pages yet.")
		return
	case errors.Is(err, render.ErrPageNotFound):
		statusPage(w, http.StatusNotFound, "Page not found", "This page does not exist.")
		return
	case err != nil:
		s.log.Error("render site", zap.String("site", slug), zap.Error(err))
		statusPage(w, http.StatusInternalServerError, "Error", "Something went wrong.")
		return
	}
	s.writeDocument(w, r, view, base)
}

// writeDocument buffers the page so a layout failure never sends half a
// document.
func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, view *render.PageView, base string) {
	hb := head.New()
	hb.SetTitle(documentTitle(view))
	hb.MetaName("generator", "sitebuilder")
	if view.Mode.Live() {
		hb.Canonical(render.PagePath(view.Site, view.Page, base))
	} else {
		hb.MetaName("robots", "noindex")
		hb.Script(`<script src="/preview/client.js" defer></script>`)
	}

	var buf bytes.Buffer
	if err := render.Document(&buf, view, hb, base, requestinfo.LangOr(r.Context(), "en")); err != nil {
		s.log.Error("render document", zap.String("site", view.Site.Slug), zap.Error(err))
		statusPage(w, http.StatusInternalServerError, "Error", "Something went wrong.")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !view.Mode.Live() {
		w.Header().Set("Cache-Control", "no-store")
	}
	_, _ = buf.WriteTo(w)
}

func documentTitle(v *render.PageView) string {
	page := v.Page.Title
	if page == "" {
		page = v.Page.Slug
	}
	switch {
	case v.Site.Name == "":
		return page
	case page == "":
		return v.Site.Name
	}
	return page + " | " + v.Site.Name
}
