package handler

import (
	"errors"
	"html/template"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/api"
	"github.com/yanizio/sitebuilder/internal/auth"
	"github.com/yanizio/sitebuilder/internal/editor"
	"github.com/yanizio/sitebuilder/internal/preview"
	"github.com/yanizio/sitebuilder/internal/requestinfo"
	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/site"
)

// sessionView is the JSON shape of every editor response.
type sessionView struct {
	ID    string       `json:"id"`
	Site  string       `json:"site"`
	Page  string       `json:"page,omitempty"`
	State editor.State `json:"state"`
}

func viewOf(sess *editor.Session) sessionView {
	return sessionView{
		ID:    sess.ID.String(),
		Site:  sess.Site,
		Page:  sess.Page,
		State: sess.Editor.Snapshot(),
	}
}

type openRequest struct {
	Site      string  `json:"site"`
	Page      string  `json:"page,omitempty"`
	SectionID site.ID `json:"section_id"`
}

// openEditor binds a new editor session to one section of a site.
func (s *Server) openEditor(w http.ResponseWriter, r *http.Request) {
	uid, err := auth.Require(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH_REQUIRED", err.Error())
		return
	}
	var req openRequest
	if err := decodeJSON(r, &req); err != nil || req.Site == "" || req.SectionID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "site and section_id are required")
		return
	}
	if s.d.Authorizer != nil {
		ok, err := s.d.Authorizer.Allowed(r.Context(), uid, req.Site, "editor", "edit")
		if err != nil {
			s.log.Error("acl check", zap.Int64("user", uid), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "not allowed to edit this site")
			return
		}
	}

	p, err := s.d.Projections.Get(r.Context(), req.Site)
	if err != nil {
		if api.NotFound(err) {
			writeError(w, http.StatusNotFound, "SITE_NOT_FOUND", err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "SITE_UNAVAILABLE", err.Error())
		return
	}
	pg, sec, ok := p.FindSection(req.SectionID)
	if !ok || (req.Page != "" && pg.Slug != req.Page) {
		writeError(w, http.StatusNotFound, "SECTION_NOT_FOUND", "section "+req.SectionID.String()+" not found")
		return
	}

	slug := req.Site
	cfg := editor.Config{
		Persister:     s.d.Backend,
		Suggester:     s.d.Backend,
		Site:          slug,
		Notify:        func(u preview.Update) { s.d.Hub.Publish(u) },
		Render:        s.fragment(p),
		PreviewDelay:  s.d.PreviewDelay,
		SuccessWindow: s.d.SuccessWindow,
		OnSaved: func(saved *site.Section) {
			if !s.d.Projections.ApplySection(slug, saved) {
				s.d.Projections.Invalidate(slug)
			}
		},
		Logger: s.log,
	}
	sess, err := s.d.Editors.Open(uid, slug, pg.Slug, cfg, sec)
	if err != nil {
		writeError(w, http.StatusConflict, "SECTION_LOCKED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

// fragment renders a draft section with the site's family in preview mode.
func (s *Server) fragment(p *site.Projection) func(*site.Section) template.HTML {
	return func(sec *site.Section) template.HTML {
		return s.d.Renderer.RenderSection(p, sec, section.ModePreview).HTML
	}
}

// session resolves {id} for the signed-in owner, writing the error
// response itself when it fails.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	uid, err := auth.Require(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH_REQUIRED", err.Error())
		return nil, false
	}
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return nil, false
	}
	sess, ok := s.d.Editors.Get(id, uid)
	if !ok {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "editor session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) editorState(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

func (s *Server) closeEditor(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.d.Editors.Remove(sess.ID, sess.Owner)
	w.WriteHeader(http.StatusNoContent)
}

// changeRequest carries either one key/value pair or a batch.
type changeRequest struct {
	Key    string            `json:"key,omitempty"`
	Value  string            `json:"value,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) changeFields(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req changeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if req.Key != "" {
		if req.Fields == nil {
			req.Fields = map[string]string{}
		}
		req.Fields[req.Key] = req.Value
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "no fields to change")
		return
	}

	keys := make([]string, 0, len(req.Fields))
	for k := range req.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := sess.Editor.Change(k, req.Fields[k]); err != nil {
			s.editorError(w, sess, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) saveEditor(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Editor.Save(r.Context()); err != nil {
		s.editorError(w, sess, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) resetEditor(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Editor.Reset(); err != nil {
		s.editorError(w, sess, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

type suggestRequest struct {
	Locale string `json:"locale,omitempty"`
	Tone   string `json:"tone,omitempty"`
}

func (s *Server) suggestEditor(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req suggestRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
	}
	if req.Locale == "" {
		req.Locale = requestinfo.LangOr(r.Context(), "en")
	}
	if _, err := sess.Editor.Suggest(r.Context(), req.Locale, req.Tone); err != nil {
		s.editorError(w, sess, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// editorError maps editor and builder API failures to status codes.  The
// session view rides along so the dashboard keeps the user's draft on
// screen.
func (s *Server) editorError(w http.ResponseWriter, sess *editor.Session, err error) {
	type failure struct {
		sessionView
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired):
		status, code = http.StatusUnauthorized, "AUTH_REQUIRED"
	case errors.Is(err, editor.ErrBusy):
		status, code = http.StatusConflict, "BUSY"
	case errors.Is(err, editor.ErrNotBound):
		status, code = http.StatusConflict, "NOT_BOUND"
	case errors.Is(err, editor.ErrUnknownField):
		status, code = http.StatusUnprocessableEntity, "UNKNOWN_FIELD"
	case errors.Is(err, api.ErrPersistence):
		status, code = http.StatusBadGateway, "PERSISTENCE_FAILURE"
	case errors.Is(err, api.ErrSuggestion):
		status, code = http.StatusBadGateway, "SUGGESTION_FAILURE"
	default:
		s.log.Error("editor", zap.Stringer("session", sess.ID), zap.Error(err))
	}
	writeJSON(w, status, failure{sessionView: viewOf(sess), Error: err.Error(), Code: code})
}
