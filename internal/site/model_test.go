package site

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestID_DecodesStringAndNumber(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":7,"b":"hero-7","c":null}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.A != "7" || got.B != "hero-7" || got.C != "" {
		t.Fatalf("unexpected ids: %#v", got)
	}

	out, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{"7", "hero-7"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":7,"b":"hero-7"}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestProjection_DecodesPartialData(t *testing.T) {
	raw := `{
	  "name": "Trattoria", "slug": "trattoria", "site_template_key": "no-such-family",
	  "pages": [
	    {"id": 1, "title": "Home", "slug": "home", "sections": []},
	    {"id": 2, "title": "Menu", "slug": "menu", "sections": [
	      {"id": 9, "identifier": "menu-list", "order": 1, "fields": []}
	    ]}
	  ]
	}`
	var p Projection
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.TemplateKey != "no-such-family" || len(p.Pages) != 2 {
		t.Fatalf("unexpected projection: %+v", p)
	}
	if len(p.Pages[0].Sections) != 0 || len(p.Pages[1].Sections[0].Fields) != 0 {
		t.Fatalf("empty collections not preserved")
	}
}

func TestHomePage_FallsBackToFirstPage(t *testing.T) {
	p := Projection{Pages: []Page{{Slug: "menu"}, {Slug: "contact"}}}
	home, ok := p.HomePage()
	if !ok || home.Slug != "menu" {
		t.Fatalf("home = %+v, ok=%v; want pages[0]", home, ok)
	}

	p.Pages = append(p.Pages, Page{Slug: HomeSlug})
	home, _ = p.HomePage()
	if home.Slug != HomeSlug {
		t.Fatalf("home slug = %q, want %q", home.Slug, HomeSlug)
	}

	empty := Projection{}
	if _, ok := empty.HomePage(); ok || !empty.IsEmpty() {
		t.Fatalf("empty projection should have no home page")
	}
}

func TestPageBySlug(t *testing.T) {
	p := Projection{Pages: []Page{{Slug: "menu"}, {Slug: "contact"}}}
	if pg, ok := p.PageBySlug(""); !ok || pg.Slug != "menu" {
		t.Fatalf("empty slug should resolve home")
	}
	if pg, ok := p.PageBySlug("contact"); !ok || pg.Slug != "contact" {
		t.Fatalf("contact not found")
	}
	if _, ok := p.PageBySlug("missing"); ok {
		t.Fatalf("missing slug resolved")
	}
}

func TestSortedSections_StableOnTies(t *testing.T) {
	pg := Page{Sections: []Section{
		{ID: "a", Order: 2},
		{ID: "b", Order: 1},
		{ID: "c", Order: 2},
		{ID: "d", Order: 1},
	}}
	got := pg.SortedSections()
	want := []ID{"b", "d", "a", "c"}
	for i, s := range got {
		if s.ID != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, s.ID, want[i])
		}
	}
	if pg.Sections[0].ID != "a" {
		t.Fatalf("SortedSections mutated the page")
	}
}

func TestValidate_Duplicates(t *testing.T) {
	s := Section{ID: "1", Fields: []Field{{Key: "a"}, {Key: "a"}}}
	if err := s.Validate(); !errors.Is(err, ErrDuplicateFieldKey) {
		t.Fatalf("err = %v, want ErrDuplicateFieldKey", err)
	}

	p := Projection{Pages: []Page{{Slug: "x"}, {Slug: "x"}}}
	if err := p.Validate(); !errors.Is(err, ErrDuplicatePageSlug) {
		t.Fatalf("err = %v, want ErrDuplicatePageSlug", err)
	}
}

func TestWithValues_LeavesOriginalUntouched(t *testing.T) {
	s := &Section{ID: "7", Fields: []Field{{Key: "headline", Value: "Welcome"}, {Key: "sub", Value: "x"}}}
	c := s.WithValues(map[string]string{"headline": "Hi"})
	if c.Value("headline") != "Hi" || c.Value("sub") != "x" {
		t.Fatalf("copy values = %v", c.Values())
	}
	if s.Value("headline") != "Welcome" {
		t.Fatalf("original mutated")
	}
	if (Field{Key: "k"}).DisplayLabel() != "k" {
		t.Fatalf("label fallback")
	}
}
