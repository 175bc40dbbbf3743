package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

func TestForceHTTPS(t *testing.T) {
	h := ForceHTTPS(true, ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://cafe.example.com/s/cafe?x=1", nil))
	if rec.Code != http.StatusPermanentRedirect || rec.Header().Get("Location") != "https://cafe.example.com/s/cafe?x=1" {
		t.Fatalf("code %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "http://localhost:8080/s/cafe", nil),
		httptest.NewRequest(http.MethodGet, "http://cafe.example.com/healthz", nil),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "http://cafe.example.com/", nil)
			r.Header.Set("X-Forwarded-Proto", "https")
			return r
		}(),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "https://cafe.example.com/", nil)
			r.TLS = &tls.ConnectionState{}
			return r
		}(),
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s redirected: %d", req.URL, rec.Code)
		}
	}

	rec = httptest.NewRecorder()
	ForceHTTPS(false, ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://cafe.example.com/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("disabled wrapper redirected")
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Security(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" ||
		!strings.HasSuffix(rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'") {
		t.Fatalf("headers = %v", rec.Header())
	}

	rec = httptest.NewRecorder()
	FrameSameOrigin(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/cafe/home", nil))
	if rec.Header().Get("X-Frame-Options") != "SAMEORIGIN" ||
		!strings.HasSuffix(rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'self'") {
		t.Fatalf("preview headers = %v", rec.Header())
	}
}

func TestStripPort(t *testing.T) {
	for in, want := range map[string]string{"a.com:80": "a.com", "a.com": "a.com", "[::1]": "[::1]", "[::1]:8080": "[::1]"} {
		if got := stripPort(in); got != want {
			t.Errorf("stripPort(%q) = %q", in, got)
		}
	}
}
