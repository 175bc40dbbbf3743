// internal/csrf/csrf.go
//
// Stateless CSRF tokens for dashboard writes.
//
// Context
//   The dashboard fetches a token from GET /dashboard/csrf and echoes it in
//   the X-CSRF-Token header on every POST, PUT, PATCH, or DELETE.  Tokens
//   are stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(key, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.  Prevents replay across users.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – keyed with a value derived from the session secret, so one
//      configured secret never signs two kinds of token.
//
//   Validation checks the signature and ensures the timestamp is within
//   MaxAge.  No server-side state, so the service stays multi-instance safe.
//
// Workflow
//   •  p.Generate()      → token string.
//   •  p.Verify(tok)     → constant-time verify; false on any failure.
//   •  p.Protect(next)   → 403 for unsafe methods without a valid header.
//
//------------------------------------------------------------------------------

package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// HeaderName carries the token on unsafe requests.
	HeaderName = "X-CSRF-Token"
	// MaxAge is the token validity window.
	MaxAge = 2 * time.Hour

	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size // nonce + ts + sig
)

// Protector issues and checks tokens.  Safe for concurrent use.
type Protector struct {
	key []byte
	now func() time.Time
}

// New derives the signing key from secret.
func New(secret string) *Protector {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("csrf"))
	return &Protector{key: mac.Sum(nil), now: time.Now}
}

// Generate creates a new token.
func (p *Protector) Generate() (string, error) {
	buf := make([]byte, nonceBytes+8, tokenBytes)
	if _, err := rand.Read(buf[:nonceBytes]); err != nil {
		return "", err
	}
	binary.BigEndian.PutUint64(buf[nonceBytes:], uint64(p.now().UnixMicro()))
	buf = append(buf, p.sign(buf)...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify returns true if tok passes HMAC and age checks.
func (p *Protector) Verify(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	body, sig := raw[:nonceBytes+8], raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(body[nonceBytes:])))
	now := p.now()
	if now.Sub(issued) > MaxAge || issued.Sub(now) > time.Minute {
		// Future timestamp (clock skew) or older than MaxAge.
		return false
	}
	return hmac.Equal(sig, p.sign(body))
}

// Protect rejects unsafe requests that lack a valid token.
func (p *Protector) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if !p.Verify(r.Header.Get(HeaderName)) {
				zap.L().Debug("csrf rejected", zap.String("path", r.URL.Path))
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP hands out a fresh token as {"csrf_token": "..."}.
func (p *Protector) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	tok, err := p.Generate()
	if err != nil {
		zap.L().Error("csrf generate", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(map[string]string{"csrf_token": tok})
}

func (p *Protector) sign(body []byte) []byte {
	mac := hmac.New(sha256.New, p.key)
	mac.Write(body)
	return mac.Sum(nil)
}
