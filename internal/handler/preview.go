package handler

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/sitebuilder/internal/routing"
	"github.com/yanizio/sitebuilder/internal/section"
)

//go:embed static/client.js
var clientJS []byte

// previewPage renders /preview/{site}/{page}?mode=preview|dashboard.  The
// page shows persisted content; drafts arrive over the socket.
func (s *Server) previewPage(w http.ResponseWriter, r *http.Request) {
	mode, err := section.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MODE", err.Error())
		return
	}
	if mode.Live() {
		mode = section.ModePreview
	}
	slug := chi.URLParam(r, "site")
	s.renderProjection(w, r, slug, chi.URLParam(r, "page"), mode,
		routing.BuildPath("/preview", slug))
}

// previewSocket streams debounced draft updates for one site.
func (s *Server) previewSocket(w http.ResponseWriter, r *http.Request) {
	s.d.Hub.ServeWS(w, r, chi.URLParam(r, "site"))
}

func serveClientJS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(clientJS)
}
