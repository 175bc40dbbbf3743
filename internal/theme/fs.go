// fs.go holds tiny helpers for walking a template filesystem when glob
// patterns such as “**/*.html” are not available in the Go standard library.
// The key export is CollectHTML, which returns every .html path under the
// supplied directory of an fs.FS (embedded or os.DirFS).
package theme

import (
	"io/fs"
	"strings"
)

// CollectHTML walks root recursively and returns a sorted list of *.html
// paths, ready for template.ParseFS.
func CollectHTML(fsys fs.FS, root string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil { // propagate filesystem errors immediately
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
