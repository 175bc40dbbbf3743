package vault

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestGetKV_CachesWithinTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/sitebuilder" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Vault-Token") != "root" {
			t.Errorf("token header = %q", r.Header.Get("X-Vault-Token"))
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data": {"data": {"api_token": "s3cr3t", "n": 1}, "metadata": {"version": 1}}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{Address: srv.URL, Token: "root", Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		v, err := c.GetKV(ctx, "secret/sitebuilder", "api_token", time.Minute)
		if err != nil || v != "s3cr3t" {
			t.Fatalf("get %d: %q, %v", i, v, err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want 1 (cached)", hits.Load())
	}

	if _, err := c.GetKV(ctx, "secret/sitebuilder", "missing", 0); err == nil {
		t.Fatal("missing key accepted")
	}
	if _, err := c.GetKV(ctx, "secret/sitebuilder", "n", 0); err == nil {
		t.Fatal("non-string value accepted")
	}
	if _, err := c.GetKV(ctx, "", "k", 0); err == nil {
		t.Fatal("empty path accepted")
	}
}

func TestSplitMount(t *testing.T) {
	if m, r := splitMount("secret/app/prod"); m != "secret" || r != "app/prod" {
		t.Fatalf("got %q %q", m, r)
	}
	if m, r := splitMount("secret"); m != "secret" || r != "" {
		t.Fatalf("got %q %q", m, r)
	}
}
