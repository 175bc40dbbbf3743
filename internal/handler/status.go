package handler

import (
	"html/template"
	"net/http"
)

var statusTpl = template.Must(template.New("status").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{ .Title }}</title></head>
<body class="status-page">
<main><h1>{{ .Title }}</h1><p>{{ .Message }}</p></main>
</body>
</html>
`))

// statusPage writes a minimal HTML page for page-level states (site not
// found, site unavailable, no pages yet).
func statusPage(w http.ResponseWriter, code int, title, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = statusTpl.Execute(w, map[string]string{"Title": title, "Message": msg})
}
