package handler

import (
	"net/http"

	"go.uber.org/zap"
)

type devLoginRequest struct {
	UserID int64 `json:"user_id"`
}

// devLogin issues a session cookie for any user id.  Mounted only when
// session.dev_login is set; production cookies come from the dashboard.
func (s *Server) devLogin(w http.ResponseWriter, r *http.Request) {
	var req devLoginRequest
	if err := decodeJSON(r, &req); err != nil || req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "user_id must be a positive integer")
		return
	}
	s.d.Sessions.Issue(w, r, req.UserID)
	s.log.Warn("development sign-in", zap.Int64("user", req.UserID))
	w.WriteHeader(http.StatusNoContent)
}

// logout expires the session cookie.  Open editor sessions are left to the
// idle sweep.
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	s.d.Sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
