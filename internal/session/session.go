// internal/session/session.go
//
// Dashboard session cookie.
//
// Context
//   The dashboard (a separate application) signs the user in and hands this
//   service a session cookie.  We verify it, expire it on logout, and issue
//   one only through the development sign-in route.  The cookie value is
//   stateless:
//
//      base64url( userID | expiresUnix | HMAC_SHA256(secret, userID+expires) )
//
//   •  userID – 8 bytes, big-endian.
//   •  expiresUnix – 8 bytes, big-endian, seconds.
//   •  HMAC – keyed with config session.secret.  Verifies authenticity.
//
//   No server-side store is required, so any instance can verify any cookie.
//
// Workflow
//   •  m.Issue(w, r, uid)   → sets "sb_session" (POST /dashboard/dev/login).
//   •  m.Middleware(next)   → attaches auth.WithUser when the cookie verifies.
//   •  m.Clear(w)           → expires the cookie (POST /dashboard/logout).
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"net/http"
	"time"

	"github.com/yanizio/sitebuilder/internal/auth"
)

const (
	// CookieName is the dashboard session cookie.
	CookieName = "sb_session"

	payloadBytes = 8 + 8
	tokenBytes   = payloadBytes + sha256.Size
	minSecret    = 32
)

// ErrShortSecret is returned by New when the key is too weak to sign with.
var ErrShortSecret = errors.New("session: secret must be at least 32 bytes")

// Manager signs and verifies session cookies.  Safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New returns a Manager.  ttl ≤ 0 means 14 days.
func New(secret string, ttl time.Duration) (*Manager, error) {
	if len(secret) < minSecret {
		return nil, ErrShortSecret
	}
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Token returns a signed value for userID expiring after the manager TTL.
func (m *Manager) Token(userID int64) string {
	buf := make([]byte, payloadBytes, tokenBytes)
	binary.BigEndian.PutUint64(buf[:8], uint64(userID))
	binary.BigEndian.PutUint64(buf[8:], uint64(m.now().Add(m.ttl).Unix()))
	buf = append(buf, m.sign(buf)...)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Verify returns the user ID carried by tok.  ok == false on a bad
// signature, an expired token, or a non-positive ID.
func (m *Manager) Verify(tok string) (userID int64, ok bool) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return 0, false
	}
	if !hmac.Equal(raw[payloadBytes:], m.sign(raw[:payloadBytes])) {
		return 0, false
	}
	exp := time.Unix(int64(binary.BigEndian.Uint64(raw[8:16])), 0)
	if !m.now().Before(exp) {
		return 0, false
	}
	userID = int64(binary.BigEndian.Uint64(raw[:8]))
	return userID, userID > 0
}

// Issue sets the session cookie for userID.
func (m *Manager) Issue(w http.ResponseWriter, r *http.Request, userID int64) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.Token(userID),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  m.now().Add(m.ttl),
	})
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// UserID returns the verified user on r, if any.
func (m *Manager) UserID(r *http.Request) (int64, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	return m.Verify(c.Value)
}

// Middleware attaches the verified user to the request context.  Requests
// without a valid cookie pass through anonymous; writes downstream refuse
// them via auth.Require.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := m.UserID(r); ok {
			r = r.WithContext(auth.WithUser(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
