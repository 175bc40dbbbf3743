// internal/site/model.go
//
// Site Projection data model.
//
// Context
// -------
// The builder API serves one tenant's public data as a tree:
//
//	Projection → Page → Section → Field
//
// Every Field value is a string, even prices and dates; renderers decide how
// to interpret them.  The structs below mirror the API JSON so the client can
// decode straight into them.  Nothing in this package performs I/O.
//
// Notes
// -----
//   - ID accepts either a JSON string or a JSON number because the API
//     is not consistent across endpoints.  It always prints as a string.
//   - Slices are kept in fetch order; use the Sorted* helpers for display
//     order.  Ties on Order keep fetch order.
//   - Oxford commas, two spaces after periods.
package site

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrDuplicateFieldKey is returned by Section.Validate.
	ErrDuplicateFieldKey = errors.New("duplicate field key")
	// ErrDuplicatePageSlug is returned by Projection.Validate.
	ErrDuplicatePageSlug = errors.New("duplicate page slug")
)

// HomeSlug names the page served at the site root.
const HomeSlug = "home"

//
// Identifiers
//

// ID is the opaque persistence key of a Page, Section, or Field.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts "7", 7, and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("site id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes a number when the id is numeric, otherwise a string, so
// the API receives the same shape it sent.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

//
// Field
//

// Field is one typed key/value pair of a Section.
type Field struct {
	ID    ID     `json:"id,omitempty"` // backend field id, optional
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
	Order int    `json:"order"`
}

// DisplayLabel falls back to Key when Label is blank.
func (f Field) DisplayLabel() string {
	if f.Label == "" {
		return f.Key
	}
	return f.Label
}

// FieldValue is the wire shape of one entry in a field update payload.
type FieldValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

//
// Section
//

// Section is an ordered group of Fields rendered by the renderer registered
// for Identifier.
type Section struct {
	ID           ID      `json:"id"`
	Identifier   string  `json:"identifier"`
	InternalName string  `json:"internal_name,omitempty"`
	Order        int     `json:"order"`
	Fields       []Field `json:"fields"`
}

// Validate checks that no two Fields share a key.
func (s *Section) Validate() error {
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("section %s: %w %q", s.ID, ErrDuplicateFieldKey, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}

// SortedFields returns a copy of Fields in ascending Order.
func (s *Section) SortedFields() []Field {
	out := make([]Field, len(s.Fields))
	copy(out, s.Fields)
	sortStable(out, func(f Field) int { return f.Order })
	return out
}

// FieldByKey returns the field with key, if any.
func (s *Section) FieldByKey(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Value is a shortcut for templates; missing keys yield "".
func (s *Section) Value(key string) string {
	f, _ := s.FieldByKey(key)
	return f.Value
}

// Values snapshots every field as key → value.
func (s *Section) Values() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Key] = f.Value
	}
	return out
}

// Clone returns a deep copy so callers may mutate fields freely.
func (s *Section) Clone() *Section {
	if s == nil {
		return nil
	}
	c := *s
	c.Fields = make([]Field, len(s.Fields))
	copy(c.Fields, s.Fields)
	return &c
}

// WithValues returns a copy whose field values are replaced by vals where a
// key is present.  Keys absent from vals keep their value.
func (s *Section) WithValues(vals map[string]string) *Section {
	c := s.Clone()
	for i := range c.Fields {
		if v, ok := vals[c.Fields[i].Key]; ok {
			c.Fields[i].Value = v
		}
	}
	return c
}

//
// Page
//

// Page is one routable page of a site.
type Page struct {
	ID       ID        `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Sections []Section `json:"sections"`
}

// SortedSections returns a copy of Sections in ascending Order, fetch order
// on ties.
func (p *Page) SortedSections() []Section {
	out := make([]Section, len(p.Sections))
	copy(out, p.Sections)
	sortStable(out, func(s Section) int { return s.Order })
	return out
}

// SectionByID finds a section on the page.
func (p *Page) SectionByID(id ID) (*Section, bool) {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i], true
		}
	}
	return nil, false
}

//
// Projection
//

// Projection is the read-only snapshot of one tenant's public site.
type Projection struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	TemplateKey string `json:"site_template_key"`
	Pages       []Page `json:"pages"`
}

// IsEmpty reports a loaded projection without pages.  This is a valid state,
// not a missing projection.
func (p *Projection) IsEmpty() bool { return len(p.Pages) == 0 }

// HomePage returns the page with slug "home", else the first page.
func (p *Projection) HomePage() (*Page, bool) {
	if len(p.Pages) == 0 {
		return nil, false
	}
	for i := range p.Pages {
		if p.Pages[i].Slug == HomeSlug {
			return &p.Pages[i], true
		}
	}
	return &p.Pages[0], true
}

// PageBySlug resolves a page; "" and "home" follow the home-page rule.
func (p *Projection) PageBySlug(slug string) (*Page, bool) {
	if slug == "" || slug == HomeSlug {
		return p.HomePage()
	}
	for i := range p.Pages {
		if p.Pages[i].Slug == slug {
			return &p.Pages[i], true
		}
	}
	return nil, false
}

// FindSection searches every page for id.
func (p *Projection) FindSection(id ID) (*Page, *Section, bool) {
	for i := range p.Pages {
		if s, ok := p.Pages[i].SectionByID(id); ok {
			return &p.Pages[i], s, true
		}
	}
	return nil, nil, false
}

// Validate checks page slug uniqueness and field key uniqueness.
func (p *Projection) Validate() error {
	seen := make(map[string]struct{}, len(p.Pages))
	for i := range p.Pages {
		pg := &p.Pages[i]
		if _, dup := seen[pg.Slug]; dup {
			return fmt.Errorf("site %s: %w %q", p.Slug, ErrDuplicatePageSlug, pg.Slug)
		}
		seen[pg.Slug] = struct{}{}
		for j := range pg.Sections {
			if err := pg.Sections[j].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
