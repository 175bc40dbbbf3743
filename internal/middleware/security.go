// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  self-only policy
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Preview pages are framed by the dashboard, so FrameSameOrigin relaxes
//   frame-ancestors and X-Frame-Options for those routes only.  Public and
//   dashboard API routes keep 'none' / DENY.
// • Headers are set before next.ServeHTTP (writes after WriteHeader are
//   lost); a handler may still override any of them.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

const (
	hsts = "max-age=63072000; includeSubDomains; preload"
	csp  = "default-src 'self'; img-src 'self' https: data:; object-src 'none'; " +
		"base-uri 'self'; connect-src 'self' wss: ws:; frame-ancestors "
	nosn  = "nosniff"
	refer = "strict-origin-when-cross-origin"
	perm  = "geolocation=(), microphone=(), camera=()"
)

// Security sets security headers that forbid framing.
func Security(next http.Handler) http.Handler { return security(next, "'none'", "DENY") }

// FrameSameOrigin is Security for routes the dashboard embeds in an iframe.
func FrameSameOrigin(next http.Handler) http.Handler {
	return security(next, "'self'", "SAMEORIGIN")
}

func security(next http.Handler, ancestors, xfo string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", hsts)
		h.Set("Content-Security-Policy", csp+ancestors)
		h.Set("X-Frame-Options", xfo)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("Referrer-Policy", refer)
		h.Set("Permissions-Policy", perm)
		next.ServeHTTP(w, r)
	})
}
