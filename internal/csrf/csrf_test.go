package csrf

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateVerify(t *testing.T) {
	p := New("0123456789abcdef0123456789abcdef")
	tok, err := p.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !p.Verify(tok) {
		t.Fatal("fresh token rejected")
	}
	if New("another-secret-another-secret-xx").Verify(tok) {
		t.Fatal("token verified under another secret")
	}
	if p.Verify("") || p.Verify(tok[:len(tok)-2]) {
		t.Fatal("malformed token accepted")
	}
}

func TestVerify_Age(t *testing.T) {
	p := New("k")
	now := time.Now()
	p.now = func() time.Time { return now }
	tok, _ := p.Generate()

	p.now = func() time.Time { return now.Add(MaxAge + time.Second) }
	if p.Verify(tok) {
		t.Fatal("stale token accepted")
	}
	p.now = func() time.Time { return now.Add(-2 * time.Minute) }
	if p.Verify(tok) {
		t.Fatal("future token accepted")
	}
}

func TestProtect(t *testing.T) {
	p := New("k")
	h := p.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/editor/x", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("GET code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/editor", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST without token code = %d", rec.Code)
	}

	issue := httptest.NewRecorder()
	p.ServeHTTP(issue, httptest.NewRequest(http.MethodGet, "/dashboard/csrf", nil))
	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.NewDecoder(issue.Body).Decode(&body); err != nil || body.Token == "" {
		t.Fatalf("issue: %v %+v", err, body)
	}

	req := httptest.NewRequest(http.MethodPost, "/dashboard/editor", nil)
	req.Header.Set(HeaderName, body.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST with token code = %d", rec.Code)
	}
}
