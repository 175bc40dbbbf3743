package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yanizio/sitebuilder/internal/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestNew_ShortSecret(t *testing.T) {
	if _, err := New("short", 0); err != ErrShortSecret {
		t.Fatalf("err = %v", err)
	}
}

func TestTokenRoundTripAndExpiry(t *testing.T) {
	m, err := New(secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	tok := m.Token(42)
	if uid, ok := m.Verify(tok); !ok || uid != 42 {
		t.Fatalf("verify = %d, %v", uid, ok)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := m.Verify(tok); ok {
		t.Fatal("expired token accepted")
	}
}

func TestVerify_Tampered(t *testing.T) {
	m, _ := New(secret, time.Hour)
	other, _ := New(strings.Repeat("z", 32), time.Hour)

	if _, ok := m.Verify(other.Token(7)); ok {
		t.Fatal("foreign signature accepted")
	}
	if _, ok := m.Verify("not-base64!"); ok {
		t.Fatal("garbage accepted")
	}
	if _, ok := m.Verify(m.Token(0)); ok {
		t.Fatal("zero user accepted")
	}
}

func TestMiddleware(t *testing.T) {
	m, _ := New(secret, time.Hour)

	var got int64
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.UserID(r.Context())
	}))

	rec := httptest.NewRecorder()
	m.Issue(rec, httptest.NewRequest(http.MethodGet, "/", nil), 9)
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/dashboard/editor", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != 9 {
		t.Fatalf("user = %d, want 9", got)
	}

	got = -1
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != 0 {
		t.Fatalf("anonymous request got user %d", got)
	}
}

func TestClear(t *testing.T) {
	m, _ := New(secret, time.Hour)
	rec := httptest.NewRecorder()
	m.Clear(rec)
	c := rec.Result().Cookies()[0]
	if c.Name != CookieName || c.MaxAge >= 0 {
		t.Fatalf("cookie = %+v", c)
	}
}
