package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/auth"
	"github.com/yanizio/sitebuilder/internal/panel"
)

// openPanel resolves {site}/{panel} and loads the store.
func (s *Server) openPanel(w http.ResponseWriter, r *http.Request) (panel.Panel, bool) {
	if s.d.Panels == nil {
		writeError(w, http.StatusServiceUnavailable, "PANELS_DISABLED", "panel storage is not configured")
		return nil, false
	}
	kind, err := panel.ParseKind(chi.URLParam(r, "panel"))
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_PANEL", err.Error())
		return nil, false
	}
	st, err := s.d.Panels(chi.URLParam(r, "site"), kind)
	if err == nil {
		err = st.Load(r.Context())
	}
	if err != nil {
		s.log.Error("panel load", zap.String("site", chi.URLParam(r, "site")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return nil, false
	}
	return st, true
}

func (s *Server) getPanel(w http.ResponseWriter, r *http.Request) {
	if st, ok := s.openPanel(w, r); ok {
		writeJSON(w, http.StatusOK, st)
	}
}

// putPanel replaces the document.  An If-Match header carrying the version
// the dashboard last read turns a lost update into 409.
func (s *Server) putPanel(w http.ResponseWriter, r *http.Request) {
	st, ok := s.openPanel(w, r)
	if !ok {
		return
	}
	if im := strings.Trim(r.Header.Get("If-Match"), `" `); im != "" {
		if v, err := strconv.Atoi(im); err != nil || v != st.Version() {
			writeError(w, http.StatusConflict, "CONFLICT", panel.ErrConflict.Error())
			return
		}
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := st.ReplaceJSON(raw); err != nil {
		var ve *panel.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  err.Error(),
				"code":   "VALIDATION_ERROR",
				"fields": ve.Fields,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	switch err := st.Persist(r.Context()); {
	case errors.Is(err, auth.ErrAuthenticationRequired):
		writeError(w, http.StatusUnauthorized, "AUTH_REQUIRED", err.Error())
	case errors.Is(err, panel.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case err != nil:
		s.log.Error("panel persist", zap.String("site", chi.URLParam(r, "site")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	default:
		writeJSON(w, http.StatusOK, st)
	}
}
