package api

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/sitebuilder/internal/routing"
	"github.com/yanizio/sitebuilder/internal/site"
)

//go:embed defaults.yaml
var builtinDefaults []byte

// yaml mirror of site.Page; the model only carries json tags.
type yamlPages struct {
	Pages []struct {
		Slug     string `yaml:"slug"`
		Title    string `yaml:"title"`
		Sections []struct {
			ID           string `yaml:"id"`
			Identifier   string `yaml:"identifier"`
			InternalName string `yaml:"internal_name"`
			Order        int    `yaml:"order"`
			Fields       []struct {
				Key   string `yaml:"key"`
				Label string `yaml:"label"`
				Value string `yaml:"value"`
				Order int    `yaml:"order"`
			} `yaml:"fields"`
		} `yaml:"sections"`
	} `yaml:"pages"`
}

// DecodeDefaultPages parses a defaults document into pages keyed by slug.
func DecodeDefaultPages(r io.Reader) (map[string]site.Page, error) {
	var doc yamlPages
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("default pages: %w", err)
	}

	out := make(map[string]site.Page, len(doc.Pages))
	for _, yp := range doc.Pages {
		if yp.Slug == "" {
			return nil, fmt.Errorf("default pages: page %q has no slug", yp.Title)
		}
		pg := site.Page{Slug: routing.MakeSlug(yp.Slug), Title: yp.Title}
		for _, ys := range yp.Sections {
			s := site.Section{ID: site.ID(ys.ID), Identifier: ys.Identifier, InternalName: ys.InternalName, Order: ys.Order}
			for _, yf := range ys.Fields {
				s.Fields = append(s.Fields, site.Field{Key: yf.Key, Label: yf.Label, Value: yf.Value, Order: yf.Order})
			}
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("default pages: %w", err)
			}
			pg.Sections = append(pg.Sections, s)
		}
		out[pg.Slug] = pg
	}
	return out, nil
}

// LoadDefaultPages reads path, or the built-in defaults when path is "".
func LoadDefaultPages(path string) (map[string]site.Page, error) {
	if path == "" {
		return DecodeDefaultPages(bytes.NewReader(builtinDefaults))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("default pages: %w", err)
	}
	defer f.Close()
	return DecodeDefaultPages(f)
}
