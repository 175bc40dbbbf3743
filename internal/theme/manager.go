package theme

import (
	"fmt"
	"html/template"
	"io/fs"
)

// Load parses every *.html under root in fsys as one template set named
// after the family.  Sub-templates ({{ template "row" . }}) work across
// files.  An empty directory is an error so a mistyped embed path fails at
// start-up.
func Load(name string, fsys fs.FS, root string) (*Theme, error) {
	files, err := CollectHTML(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("theme %s: no templates under %s", name, root)
	}

	tpl, err := template.New(name).Funcs(FuncMap()).ParseFS(fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", name, err)
	}
	return New(name, tpl), nil
}

// MustLoad is Load for package-level component tables.
func MustLoad(name string, fsys fs.FS, root string) *Theme {
	th, err := Load(name, fsys, root)
	if err != nil {
		panic(err)
	}
	return th
}
