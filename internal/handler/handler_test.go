package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/api"
	"github.com/yanizio/sitebuilder/internal/csrf"
	"github.com/yanizio/sitebuilder/internal/editor"
	"github.com/yanizio/sitebuilder/internal/panel"
	"github.com/yanizio/sitebuilder/internal/preview"
	"github.com/yanizio/sitebuilder/internal/render"
	"github.com/yanizio/sitebuilder/internal/section"
	"github.com/yanizio/sitebuilder/internal/session"
	"github.com/yanizio/sitebuilder/internal/site"
)

const testSecret = "0123456789abcdef0123456789abcdef"

/*──────────────────────────── fakes ──────────────────────────────*/

type fakeProjections struct {
	mu      sync.Mutex
	sites   map[string]*site.Projection
	err     error
	applied []*site.Section
}

func (f *fakeProjections) Get(_ context.Context, slug string) (*site.Projection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.sites[slug]
	if !ok {
		return nil, &api.Error{Kind: api.ErrMissingProjection, Op: "fetch site", Status: http.StatusNotFound}
	}
	return p, nil
}

func (f *fakeProjections) ApplySection(_ string, s *site.Section) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, s)
	return true
}

type fakeBackend struct {
	mu        sync.Mutex
	saved     [][]site.FieldValue
	saveErr   error
	suggested map[string]string
	suggErr   error
	locale    string
	page      *site.Page
}

func (b *fakeBackend) UpdateSectionFields(_ context.Context, _ site.ID, fields []site.FieldValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saved = append(b.saved, fields)
	return nil
}

func (b *fakeBackend) Suggest(_ context.Context, _ site.ID, locale, _ string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locale = locale
	return b.suggested, b.suggErr
}

func (b *fakeBackend) FetchPage(_ context.Context, slug, _ string) (*site.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil || b.page.Slug != slug {
		return nil, &api.Error{Kind: api.ErrPageUnavailable, Op: "fetch page", Status: http.StatusNotFound}
	}
	cp := *b.page
	return &cp, nil
}

/*──────────────────────────── harness ────────────────────────────*/

func cafe() *site.Projection {
	return &site.Projection{
		Name: "Cafe Lumen",
		Slug: "cafe",
		Pages: []site.Page{{
			Slug:  "home",
			Title: "Home",
			Sections: []site.Section{
				{ID: "7", Identifier: "hero-banner", Order: 1, Fields: []site.Field{
					{Key: "headline", Value: "Fresh bread", Order: 1},
					{Key: "subheadline", Value: "Daily", Order: 2},
				}},
				{ID: "8", Identifier: "mystery-block", InternalName: "Promo", Order: 2},
			},
		}},
	}
}

// set mutates the fake under its lock; the server reads it concurrently.
func (b *fakeBackend) set(fn func(*fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (f *fakeProjections) Invalidate(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sites, slug)
}

func (f *fakeProjections) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeProjections) appliedSections() []*site.Section {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*site.Section(nil), f.applied...)
}

type harness struct {
	srv     *httptest.Server
	proj    *fakeProjections
	backend *fakeBackend
	pool    *editor.Pool
	sess    *session.Manager
	csrf    *csrf.Protector
}

func newHarness(t *testing.T, opts ...func(*Deps)) *harness {
	t.Helper()
	reg := section.NewBuilder().
		Register("hero-banner", section.RendererFunc(func(p section.Props) (template.HTML, error) {
			return template.HTML("<h1>" + template.HTMLEscapeString(p.Section.Value("headline")) + "</h1>"), nil
		})).
		MustBuild()

	h := &harness{
		proj:    &fakeProjections{sites: map[string]*site.Projection{"cafe": cafe(), "empty": {Slug: "empty", Name: "Empty"}}},
		backend: &fakeBackend{},
		pool:    editor.NewPool(time.Hour, zap.NewNop()),
		csrf:    csrf.New(testSecret),
	}
	h.sess, _ = session.New(testSecret, time.Hour)
	t.Cleanup(h.pool.Close)

	d := Deps{
		Projections:  h.proj,
		Backend:      h.backend,
		Renderer:     render.New(section.NewCatalog(nil, reg), zap.NewNop()),
		Hub:          preview.NewHub(4, zap.NewNop()),
		Editors:      h.pool,
		Sessions:     h.sess,
		CSRF:         h.csrf,
		PreviewDelay: time.Millisecond,
		Logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o(&d)
	}
	h.srv = httptest.NewServer(New(d))
	t.Cleanup(h.srv.Close)
	return h
}

// do sends a request as user uid (0 = anonymous) with a valid CSRF token.
func (h *harness) do(t *testing.T, method, path string, uid int64, body string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if uid != 0 {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: h.sess.Token(uid)})
	}
	tok, _ := h.csrf.Generate()
	req.Header.Set(csrf.HeaderName, tok)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

type view struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	State struct {
		Bound        bool   `json:"bound"`
		Saved        bool   `json:"saved"`
		SaveError    string `json:"save_error"`
		SuggestError string `json:"suggest_error"`
		Fields       []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
			Dirty bool   `json:"dirty"`
		} `json:"fields"`
	} `json:"state"`
}

func decodeView(t *testing.T, body string) view {
	t.Helper()
	var v view
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return v
}

func (v view) value(key string) (string, bool) {
	for _, f := range v.State.Fields {
		if f.Key == key {
			return f.Value, f.Dirty
		}
	}
	return "", false
}

/*──────────────────────────── public ─────────────────────────────*/

func TestPublicPage(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/s/cafe", 0, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	for _, want := range []string{
		`<html lang="fr">`,
		`<title>Home | Cafe Lumen</title>`,
		`<h1>Fresh bread</h1>`,
		`Component not found:</strong> <code>mystery-block</code>`,
		`(Promo)`,
		`<link rel="canonical" href="/s/cafe">`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "client.js") {
		t.Fatal("public page loads the preview client")
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Fatalf("public XFO = %q", resp.Header.Get("X-Frame-Options"))
	}
}

func TestPublicPage_States(t *testing.T) {
	h := newHarness(t)

	if resp, _ := h.do(t, http.MethodGet, "/s/nowhere", 0, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing site: %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, http.MethodGet, "/s/cafe/menu", 0, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing page: %d", resp.StatusCode)
	}
	resp, body := h.do(t, http.MethodGet, "/s/empty", 0, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "No pages yet") {
		t.Fatalf("empty site: %d %s", resp.StatusCode, body)
	}

	h.proj.setErr(&api.Error{Kind: api.ErrMissingProjection, Op: "fetch site", Err: errors.New("dial tcp: refused")})
	resp, body = h.do(t, http.MethodGet, "/s/cafe", 0, "")
	if resp.StatusCode != http.StatusServiceUnavailable || !strings.Contains(body, "Site unavailable") {
		t.Fatalf("unavailable: %d %s", resp.StatusCode, body)
	}
}

func TestStandalonePage(t *testing.T) {
	h := newHarness(t)
	h.backend.set(func(b *fakeBackend) {
		b.page = &site.Page{Slug: "maintenance", Title: "Maintenance", Sections: []site.Section{
			{ID: "m1", Identifier: "hero-banner", Fields: []site.Field{{Key: "headline", Value: "Back soon"}}},
		}}
	})

	resp, body := h.do(t, http.MethodGet, "/pages/maintenance", 0, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "<h1>Back soon</h1>") {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, `<link rel="canonical" href="/pages/maintenance">`) {
		t.Fatalf("standalone canonical missing:\n%s", body)
	}
	if resp, _ := h.do(t, http.MethodGet, "/pages/other", 0, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown page: %d", resp.StatusCode)
	}
}

/*──────────────────────────── preview ────────────────────────────*/

func TestPreviewPage(t *testing.T) {
	h := newHarness(t)

	if resp, _ := h.do(t, http.MethodGet, "/preview/cafe/home", 0, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous preview: %d", resp.StatusCode)
	}

	resp, body := h.do(t, http.MethodGet, "/preview/cafe/home?mode=dashboard", 1, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, `class="site mode-dashboard"`) || !strings.Contains(body, `/preview/client.js`) {
		t.Fatalf("preview body:\n%s", body)
	}
	if strings.Contains(body, `rel="canonical"`) {
		t.Fatal("preview page declares a canonical link")
	}
	if resp.Header.Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Fatalf("preview XFO = %q", resp.Header.Get("X-Frame-Options"))
	}

	if resp, _ := h.do(t, http.MethodGet, "/preview/cafe/home?mode=bogus", 1, ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad mode: %d", resp.StatusCode)
	}
	resp, body = h.do(t, http.MethodGet, "/preview/client.js", 0, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "WebSocket") {
		t.Fatalf("client.js: %d", resp.StatusCode)
	}
	// Section ids reach querySelector only through CSS.escape.
	if !strings.Contains(body, "CSS.escape(id)") || strings.Contains(body, `replace(/"/g`) {
		t.Fatalf("client.js builds selectors from raw ids:\n%s", body)
	}
}

/*──────────────────────────── editor ─────────────────────────────*/

func openSession(t *testing.T, h *harness, uid int64) view {
	t.Helper()
	resp, body := h.do(t, http.MethodPost, "/dashboard/editor", uid, `{"site":"cafe","section_id":7}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open: %d %s", resp.StatusCode, body)
	}
	v := decodeView(t, body)
	if v.ID == "" || !v.State.Bound || len(v.State.Fields) != 2 {
		t.Fatalf("open view = %+v", v)
	}
	return v
}

func TestEditor_ChangeSaveFlow(t *testing.T) {
	h := newHarness(t)
	v := openSession(t, h, 1)
	base := "/dashboard/editor/" + v.ID

	resp, body := h.do(t, http.MethodPost, base+"/fields", 1, `{"key":"headline","value":"Sourdough"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change: %d %s", resp.StatusCode, body)
	}
	if val, dirty := decodeView(t, body).value("headline"); val != "Sourdough" || !dirty {
		t.Fatalf("draft = %q dirty=%v", val, dirty)
	}

	resp, body = h.do(t, http.MethodPost, base+"/save", 1, "")
	if resp.StatusCode != http.StatusOK || !decodeView(t, body).State.Saved {
		t.Fatalf("save: %d %s", resp.StatusCode, body)
	}
	var saved [][]site.FieldValue
	h.backend.set(func(b *fakeBackend) { saved = b.saved })
	if len(saved) != 1 || len(saved[0]) != 2 ||
		saved[0][0] != (site.FieldValue{Key: "headline", Value: "Sourdough"}) ||
		saved[0][1] != (site.FieldValue{Key: "subheadline", Value: "Daily"}) {
		t.Fatalf("payload = %+v", saved)
	}
	if applied := h.proj.appliedSections(); len(applied) != 1 || applied[0].Value("headline") != "Sourdough" {
		t.Fatalf("projection not refreshed: %+v", applied)
	}

	if resp, _ := h.do(t, http.MethodDelete, base, 1, ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, http.MethodGet, base, 1, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted session still visible: %d", resp.StatusCode)
	}
}

func TestEditor_Guards(t *testing.T) {
	h := newHarness(t)

	if resp, _ := h.do(t, http.MethodPost, "/dashboard/editor", 0, `{"site":"cafe","section_id":"7"}`); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous open: %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, http.MethodPost, "/dashboard/editor", 1, `{"site":"cafe","section_id":"99"}`); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown section: %d", resp.StatusCode)
	}

	v := openSession(t, h, 1)
	base := "/dashboard/editor/" + v.ID

	if resp, _ := h.do(t, http.MethodGet, base, 2, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign user: %d", resp.StatusCode)
	}
	resp, body := h.do(t, http.MethodPost, "/dashboard/editor", 2, `{"site":"cafe","section_id":"7"}`)
	if resp.StatusCode != http.StatusConflict || decodeView(t, body).Code != "SECTION_LOCKED" {
		t.Fatalf("second editor on held section: %d %s", resp.StatusCode, body)
	}
	if resp, _ := h.do(t, http.MethodGet, "/dashboard/editor/not-a-uuid", 1, ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: %d", resp.StatusCode)
	}
	resp, body = h.do(t, http.MethodPost, base+"/fields", 1, `{"key":"nope","value":"x"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity || decodeView(t, body).Code != "UNKNOWN_FIELD" {
		t.Fatalf("unknown field: %d %s", resp.StatusCode, body)
	}

	// CSRF header is required on writes.
	req, _ := http.NewRequest(http.MethodPost, h.srv.URL+base+"/save", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: h.sess.Token(1)})
	raw, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	raw.Body.Close()
	if raw.StatusCode != http.StatusForbidden {
		t.Fatalf("missing csrf: %d", raw.StatusCode)
	}
}

func TestEditor_SaveFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.backend.set(func(b *fakeBackend) {
		b.saveErr = &api.Error{Kind: api.ErrPersistence, Op: "update fields", Status: http.StatusForbidden}
	})
	v := openSession(t, h, 1)
	base := "/dashboard/editor/" + v.ID

	h.do(t, http.MethodPost, base+"/fields", 1, `{"fields":{"headline":"Rye"}}`)
	resp, body := h.do(t, http.MethodPost, base+"/save", 1, "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	got := decodeView(t, body)
	if got.Code != "PERSISTENCE_FAILURE" || got.State.SaveError == "" || got.State.Saved {
		t.Fatalf("view = %+v", got)
	}
	if val, dirty := got.value("headline"); val != "Rye" || !dirty {
		t.Fatalf("draft lost: %q dirty=%v", val, dirty)
	}
	if len(h.proj.appliedSections()) != 0 {
		t.Fatal("failed save refreshed projection")
	}

	resp, body = h.do(t, http.MethodPost, base+"/reset", 1, "")
	if val, dirty := decodeView(t, body).value("headline"); resp.StatusCode != http.StatusOK || val != "Fresh bread" || dirty {
		t.Fatalf("reset: %d %q dirty=%v", resp.StatusCode, val, dirty)
	}
}

func TestEditor_Suggest(t *testing.T) {
	h := newHarness(t)
	h.backend.set(func(b *fakeBackend) {
		b.suggested = map[string]string{"headline": "Pain frais", "unknown": "x", "subheadline": ""}
	})
	v := openSession(t, h, 1)
	base := "/dashboard/editor/" + v.ID

	resp, body := h.do(t, http.MethodPost, base+"/suggest", 1, `{"tone":"warm"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("suggest: %d %s", resp.StatusCode, body)
	}
	got := decodeView(t, body)
	if val, _ := got.value("headline"); val != "Pain frais" {
		t.Fatalf("headline = %q", val)
	}
	if val, _ := got.value("subheadline"); val != "Daily" {
		t.Fatalf("empty suggestion overwrote draft: %q", val)
	}
	var locale string
	var saves int
	h.backend.set(func(b *fakeBackend) { locale, saves = b.locale, len(b.saved) })
	if locale != "fr" {
		t.Fatalf("locale hint = %q, want fr", locale)
	}
	if saves != 0 {
		t.Fatal("suggest saved")
	}

	h.backend.set(func(b *fakeBackend) {
		b.suggErr = &api.Error{Kind: api.ErrSuggestion, Op: "suggest", Status: http.StatusBadGateway}
	})
	resp, body = h.do(t, http.MethodPost, base+"/suggest", 1, "")
	got = decodeView(t, body)
	if resp.StatusCode != http.StatusBadGateway || got.State.SuggestError == "" || got.State.SaveError != "" {
		t.Fatalf("suggest failure: %d %+v", resp.StatusCode, got)
	}
}

/*──────────────────────────── panels / ops ───────────────────────*/

func TestPanels_Disabled(t *testing.T) {
	h := newHarness(t)
	if resp, _ := h.do(t, http.MethodGet, "/dashboard/panels/cafe/navigation", 1, ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, http.MethodGet, "/dashboard/panels/cafe/navigation", 0, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous status %d", resp.StatusCode)
	}
}

func TestOpsEndpoints(t *testing.T) {
	h := newHarness(t)
	if resp, body := h.do(t, http.MethodGet, "/healthz", 0, ""); resp.StatusCode != http.StatusOK || body != "ok\n" {
		t.Fatalf("healthz: %d %q", resp.StatusCode, body)
	}
	if resp, body := h.do(t, http.MethodGet, "/metrics", 0, ""); resp.StatusCode != http.StatusOK || !strings.Contains(body, "site_projections_cached") {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}
	resp, body := h.do(t, http.MethodGet, "/dashboard/csrf", 0, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "csrf_token") {
		t.Fatalf("csrf: %d %s", resp.StatusCode, body)
	}
}

type fakePanel struct {
	mu      sync.Mutex
	data    json.RawMessage
	version int
	persist error
}

func (p *fakePanel) Load(context.Context) error { return nil }
func (p *fakePanel) Dirty() bool                { return false }

func (p *fakePanel) Version() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

func (p *fakePanel) ReplaceJSON(raw []byte) error {
	if !json.Valid(raw) {
		return errors.New("panel: bad json")
	}
	if strings.Contains(string(raw), `"page_size":"A5"`) {
		return &panel.ValidationError{Fields: []string{"Print.PageSize"}}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = append(json.RawMessage(nil), raw...)
	return nil
}

func (p *fakePanel) Persist(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.persist != nil {
		return p.persist
	}
	p.version++
	return nil
}

func (p *fakePanel) MarshalJSON() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data := p.data
	if data == nil {
		data = json.RawMessage(`{}`)
	}
	return json.Marshal(map[string]any{"version": p.version, "data": data})
}

func TestPanels_GetPut(t *testing.T) {
	fp := &fakePanel{version: 2}
	h := newHarness(t, func(d *Deps) {
		d.Panels = func(siteSlug string, kind panel.Kind) (panel.Panel, error) {
			if siteSlug != "cafe" || kind != panel.KindPrint {
				t.Errorf("opened %s/%s", siteSlug, kind)
			}
			return fp, nil
		}
	})

	resp, body := h.do(t, http.MethodGet, "/dashboard/panels/cafe/print", 1, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"version":2`) {
		t.Fatalf("get: %d %s", resp.StatusCode, body)
	}
	if resp, _ := h.do(t, http.MethodGet, "/dashboard/panels/cafe/bogus", 1, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown panel: %d", resp.StatusCode)
	}

	resp, body = h.do(t, http.MethodPut, "/dashboard/panels/cafe/print", 1, `{"page_size":"A5"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "Print.PageSize") {
		t.Fatalf("invalid: %d %s", resp.StatusCode, body)
	}

	resp, body = h.do(t, http.MethodPut, "/dashboard/panels/cafe/print", 1, `{"page_size":"A4"}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"version":3`) {
		t.Fatalf("put: %d %s", resp.StatusCode, body)
	}

	fp.mu.Lock()
	fp.persist = panel.ErrConflict
	fp.mu.Unlock()
	if resp, _ := h.do(t, http.MethodPut, "/dashboard/panels/cafe/print", 1, `{"page_size":"A4"}`); resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflict: %d", resp.StatusCode)
	}
}

/*──────────────────────────── sign-in ────────────────────────────*/

func TestDevLogin_OffByDefault(t *testing.T) {
	h := newHarness(t)
	if resp, _ := h.do(t, http.MethodPost, "/dashboard/dev/login", 0, `{"user_id":5}`); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("dev login without flag: %d", resp.StatusCode)
	}
}

func TestDevLoginAndLogout(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.DevLogin = true })

	if resp, _ := h.do(t, http.MethodPost, "/dashboard/dev/login", 0, `{"user_id":0}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero user: %d", resp.StatusCode)
	}
	resp, body := h.do(t, http.MethodPost, "/dashboard/dev/login", 0, `{"user_id":5}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("login: %d %s", resp.StatusCode, body)
	}
	var issued *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			issued = c
		}
	}
	if issued == nil || !issued.HttpOnly {
		t.Fatalf("cookie = %+v", issued)
	}
	if uid, ok := h.sess.Verify(issued.Value); !ok || uid != 5 {
		t.Fatalf("issued cookie verifies as %d, %v", uid, ok)
	}

	resp, _ = h.do(t, http.MethodPost, "/dashboard/logout", 5, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("logout cookies = %+v", resp.Cookies())
	}
}
